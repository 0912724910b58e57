package models

import "time"

// Blocked is an owner- or admin-controlled exclusion of a court interval.
type Blocked struct {
	ID        string    `bson:"id" json:"id"`                 // Unique identifier for the block
	CourtID   string    `bson:"court_id" json:"courtId"`      // Court whose interval is blocked
	Date      string    `bson:"date" json:"date"`             // Date (e.g., "2025-02-25")
	Start     Minute    `bson:"start" json:"start"`           // Start time in minutes from midnight
	End       Minute    `bson:"end" json:"end"`               // End time in minutes from midnight
	Reason    string    `bson:"reason" json:"reason"`         // Reason for blocking (e.g., "maintenance")
	CreatedBy string    `bson:"created_by" json:"createdBy"`  // User who created the block
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`  // Timestamp when the block was created
}

// Interval returns the blocked range.
func (b Blocked) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}
