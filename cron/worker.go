package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courtside/config"
	"courtside/models"
	"courtside/services/booking"
	"courtside/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Completer is the part of the booking service the worker needs.
type Completer interface {
	Complete(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

// RedisOpt returns the asynq connection for the booking task queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitCompletionWorker runs the async worker in background and returns the
// server so the caller can shut it down.
func InitCompletionWorker(svc Completer, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCompleteBooking, HandleCompletionTask(svc, logger))

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting booking completion worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("Completion worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				// The periodic completion sweep keeps bookings moving without the worker.
				logger.Error("Completion worker giving up; relying on the periodic sweep")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleCompletionTask completes the booking named in the task payload.
func HandleCompletionTask(svc Completer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BookingTaskPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid completion payload", zap.Error(err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}

		_, err := svc.Complete(ctx, p.BookingID)
		if err == nil {
			logger.Debug("Booking completed", zap.String("bookingID", p.BookingID))
			return nil
		}
		if re, ok := booking.AsRejected(err); ok {
			switch re.Reason {
			case booking.ReasonNotFound:
				logger.Info("Skipping completion of missing booking", zap.String("bookingID", p.BookingID))
				return nil
			case booking.ReasonInvalidTransition:
				// Cancelled bookings are skipped; bookings that have not ended are retried.
				b, getErr := svc.GetBooking(ctx, p.BookingID)
				if getErr == nil && b.Status == models.BookingCancelled {
					return nil
				}
			}
		}
		logger.Warn("Booking completion failed", zap.String("bookingID", p.BookingID), zap.Error(err))
		return err
	}
}
