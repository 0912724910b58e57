package models

// SlotStatus tags a range of a court's day in the availability index.
type SlotStatus string

const (
	SlotFree    SlotStatus = "free"
	SlotHeld    SlotStatus = "held"
	SlotBooked  SlotStatus = "booked"
	SlotBlocked SlotStatus = "blocked"
)

// TimeSlot is the materialised time_slots row for one grid unit.
// Rows are derived from the availability index on request; they are never stored.
type TimeSlot struct {
	ID          string `json:"id"`                    // "<courtID>:<date>:<HH:MM>"
	CourtID     string `json:"courtId"`
	Date        string `json:"date"`                  // "YYYY-MM-DD"
	StartTime   Minute `json:"startTime"`
	EndTime     Minute `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`           // no booking or hold covers the slot
	IsBlocked   bool   `json:"isBlocked"`             // administratively excluded
	BlockReason string `json:"reason,omitempty"`
}

// Bookable reports whether the slot can be reserved right now.
func (ts TimeSlot) Bookable() bool {
	return ts.IsAvailable && !ts.IsBlocked
}

// AvailabilitySlot is one grid unit with its derived status.
type AvailabilitySlot struct {
	Interval
	Status SlotStatus `json:"status"`
	// FreeMinutes is set when only part of the unit is free.
	FreeMinutes int `json:"freeMinutes,omitempty"`
}

// AvailabilityResponse is returned by the availability endpoint.
type AvailabilityResponse struct {
	CourtID  string             `json:"courtId"`
	Date     string             `json:"date"`
	Slots    []AvailabilitySlot `json:"slots"`
	Warnings []string           `json:"warnings,omitempty"`
}
