package availability

import (
	"fmt"

	"courtside/models"
)

// statusRank orders statuses from least to most restrictive.
var statusRank = map[models.SlotStatus]int{
	models.SlotFree:    0,
	models.SlotHeld:    1,
	models.SlotBlocked: 2,
	models.SlotBooked:  3,
}

func overlap(a, b models.Interval) int {
	start, end := a.Start, a.End
	if b.Start > start {
		start = b.Start
	}
	if b.End < end {
		end = b.End
	}
	if end <= start {
		return 0
	}
	return int(end - start)
}

// Project maps a day snapshot onto the grid. Each slot takes the most
// restrictive status of the entries it overlaps.
func Project(grid Grid, entries []Entry) []models.AvailabilitySlot {
	out := make([]models.AvailabilitySlot, 0, len(grid.Slots))
	for _, slot := range grid.Slots {
		status := models.SlotFree
		free := 0
		for _, e := range entries {
			n := overlap(slot, e.Interval)
			if n == 0 {
				continue
			}
			if e.Status == models.SlotFree {
				free += n
			}
			if statusRank[e.Status] > statusRank[status] {
				status = e.Status
			}
		}
		as := models.AvailabilitySlot{Interval: slot, Status: status}
		if status != models.SlotFree && free > 0 {
			as.FreeMinutes = free
		}
		out = append(out, as)
	}
	return out
}

// TimeSlots materialises time_slots rows for the grid. With availableOnly
// set, only bookable rows are returned.
func TimeSlots(key Key, grid Grid, entries []Entry, availableOnly bool) []models.TimeSlot {
	out := []models.TimeSlot{}
	for _, slot := range grid.Slots {
		ts := models.TimeSlot{
			ID:          fmt.Sprintf("%s:%s:%s", key.CourtID, key.Date, slot.Start),
			CourtID:     key.CourtID,
			Date:        key.Date,
			StartTime:   slot.Start,
			EndTime:     slot.End,
			IsAvailable: true,
		}
		for _, e := range entries {
			if overlap(slot, e.Interval) == 0 {
				continue
			}
			switch e.Status {
			case models.SlotBooked, models.SlotHeld:
				ts.IsAvailable = false
			case models.SlotBlocked:
				if !ts.IsBlocked {
					ts.BlockReason = e.Reason
				}
				ts.IsBlocked = true
			}
		}
		if availableOnly && !ts.Bookable() {
			continue
		}
		out = append(out, ts)
	}
	return out
}
