package models

// BookingTaskPayload is the body of scheduled booking lifecycle tasks.
type BookingTaskPayload struct {
	BookingID string `json:"bookingId"`
	CourtID   string `json:"courtId"`
	Date      string `json:"date"`
	End       string `json:"end"` // "HH:MM", informational
}
