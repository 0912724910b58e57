package models

import "time"

// OperatingHours is the daily window during which a court can be booked.
type OperatingHours struct {
	Start Minute `bson:"start" json:"start"` // e.g. 360 for 06:00
	End   Minute `bson:"end" json:"end"`     // e.g. 1320 for 22:00
}

// Interval returns the window as a half-open range.
func (h OperatingHours) Interval() Interval {
	return Interval{Start: h.Start, End: h.End}
}

// Court is a bookable playing surface belonging to a facility.
type Court struct {
	ID             string         `bson:"id" json:"id"`
	FacilityID     string         `bson:"facility_id" json:"facilityId"`
	Name           string         `bson:"name" json:"name"`
	SportType      string         `bson:"sport_type" json:"sportType"`
	PricePerHour   Money          `bson:"price_per_hour_cents" json:"pricePerHour"`
	OperatingHours OperatingHours `bson:"operating_hours" json:"operatingHours"`
	IsActive       bool           `bson:"is_active" json:"isActive"`
	CreatedAt      time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updatedAt"`
}

// CourtUpdate carries the editable fields of a court; nil means unchanged.
type CourtUpdate struct {
	PricePerHour   *Money          `json:"pricePerHour,omitempty"`
	OperatingHours *OperatingHours `json:"operatingHours,omitempty"`
	IsActive       *bool           `json:"isActive,omitempty"`
}

// FacilityStatus is the moderation state of a facility.
type FacilityStatus string

const (
	FacilityPending  FacilityStatus = "pending"
	FacilityApproved FacilityStatus = "approved"
	FacilityRejected FacilityStatus = "rejected"
)

// Facility is the venue that owns courts. Only ownership is needed here.
type Facility struct {
	ID        string         `bson:"id" json:"id"`
	OwnerID   string         `bson:"owner_id" json:"ownerId"`
	Name      string         `bson:"name" json:"name"`
	Status    FacilityStatus `bson:"status" json:"status"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
}
