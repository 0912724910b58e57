package models

import "time"

// BookingStatus is the lifecycle state of a booking record.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// PaymentStatus tracks settlement of a booking independently of its lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is one of the known payment states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Booking represents a reservation of one court for a contiguous time range.
type Booking struct {
	ID            string        `bson:"id" json:"id"`                          // UUID
	UserID        string        `bson:"user_id" json:"userId"`                 // user who made the booking
	FacilityID    string        `bson:"facility_id" json:"facilityId"`         // facility owning the court
	CourtID       string        `bson:"court_id" json:"courtId"`               // booked court
	Date          string        `bson:"date" json:"date"`                      // "YYYY-MM-DD"
	Start         Minute        `bson:"start" json:"start"`                    // minutes from midnight
	End           Minute        `bson:"end" json:"end"`                        // minutes from midnight, exclusive
	Status        BookingStatus `bson:"status" json:"status"`                  // confirmed, cancelled, completed
	TotalPrice    Money         `bson:"total_price_cents" json:"totalPrice"`   // stored as integer cents
	PaymentStatus PaymentStatus `bson:"payment_status" json:"paymentStatus"`   // pending, paid, refunded
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`           // creation timestamp
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`           // last status change
}

// Interval returns the half-open time range covered by the booking.
func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}
