package availability

import (
	"fmt"

	"courtside/models"
)

// Grid is the ordered set of candidate slots for one court day.
type Grid struct {
	Window      models.Interval
	Granularity int
	Slots       []models.Interval
	// Warning is set when the window is not a multiple of the granularity.
	Warning string
}

// GenerateGrid splits window into contiguous slots of granularity minutes.
// A trailing remainder shorter than one slot is dropped and reported in Warning.
func GenerateGrid(window models.Interval, granularity int) (Grid, error) {
	if !window.Valid() {
		return Grid{}, fmt.Errorf("%w: %s", ErrInvalidWindow, window)
	}
	if granularity <= 0 {
		return Grid{}, fmt.Errorf("%w: granularity %d", ErrInvalidWindow, granularity)
	}

	g := Grid{Window: window, Granularity: granularity}
	step := models.Minute(granularity)
	for start := window.Start; start+step <= window.End; start += step {
		g.Slots = append(g.Slots, models.Interval{Start: start, End: start + step})
	}

	covered := window.Start + models.Minute(len(g.Slots)*granularity)
	if covered < window.End {
		g.Warning = fmt.Sprintf("window %s is not a multiple of %d minutes; %s dropped",
			window, granularity, models.Interval{Start: covered, End: window.End})
	}
	return g, nil
}

// Aligned reports whether iv starts and ends on slot boundaries of the grid.
func (g Grid) Aligned(iv models.Interval) bool {
	if !g.Window.Contains(iv) {
		return false
	}
	step := models.Minute(g.Granularity)
	return (iv.Start-g.Window.Start)%step == 0 && (iv.End-g.Window.Start)%step == 0
}
