package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courtside/models"

	"github.com/hibiken/asynq"
)

const TypeCompleteBooking = "booking:complete"

func NewCompletionTask(payload models.BookingTaskPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCompleteBooking, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(TypeCompleteBooking + ":" + payload.BookingID),
		asynq.MaxRetry(5),
	}

	return task, opts, nil
}

// Enqueuer is the subset of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CompletionScheduler schedules booking completion tasks on the asynq queue.
type CompletionScheduler struct {
	client Enqueuer
}

func NewCompletionScheduler(client Enqueuer) *CompletionScheduler {
	return &CompletionScheduler{client: client}
}

func (s *CompletionScheduler) ScheduleCompletion(ctx context.Context, b models.Booking, at time.Time) error {
	task, opts, err := NewCompletionTask(models.BookingTaskPayload{
		BookingID: b.ID,
		CourtID:   b.CourtID,
		Date:      b.Date,
		End:       b.End.String(),
	}, at)
	if err != nil {
		return fmt.Errorf("build completion task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue completion task for %s: %w", b.ID, err)
	}
	return nil
}
