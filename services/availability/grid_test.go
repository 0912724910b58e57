package availability

import (
	"testing"

	"courtside/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGrid_SixteenHourlySlots(t *testing.T) {
	window := models.Interval{Start: 6 * 60, End: 22 * 60}

	g, err := GenerateGrid(window, 60)
	require.NoError(t, err)
	require.Len(t, g.Slots, 16)
	assert.Empty(t, g.Warning)

	assert.Equal(t, models.Minute(360), g.Slots[0].Start)
	assert.Equal(t, models.Minute(1320), g.Slots[15].End)
	for i := 1; i < len(g.Slots); i++ {
		assert.Equal(t, g.Slots[i-1].End, g.Slots[i].Start, "slots must be contiguous")
		assert.Equal(t, 60, g.Slots[i].Duration())
	}

	again, err := GenerateGrid(window, 60)
	require.NoError(t, err)
	assert.Equal(t, g, again)
}

func TestGenerateGrid_RemainderDropped(t *testing.T) {
	g, err := GenerateGrid(models.Interval{Start: 360, End: 450}, 60)
	require.NoError(t, err)
	require.Len(t, g.Slots, 1)
	assert.Equal(t, models.Interval{Start: 360, End: 420}, g.Slots[0])
	assert.Contains(t, g.Warning, "07:00-07:30")
}

func TestGenerateGrid_InvalidWindow(t *testing.T) {
	tests := []struct {
		name        string
		window      models.Interval
		granularity int
	}{
		{"end before start", models.Interval{Start: 600, End: 540}, 60},
		{"empty", models.Interval{Start: 600, End: 600}, 60},
		{"zero granularity", models.Interval{Start: 360, End: 1320}, 0},
		{"negative granularity", models.Interval{Start: 360, End: 1320}, -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateGrid(tt.window, tt.granularity)
			assert.ErrorIs(t, err, ErrInvalidWindow)
		})
	}
}

func TestGrid_Aligned(t *testing.T) {
	g, err := GenerateGrid(models.Interval{Start: 360, End: 1320}, 30)
	require.NoError(t, err)

	assert.True(t, g.Aligned(models.Interval{Start: 630, End: 690}))
	assert.False(t, g.Aligned(models.Interval{Start: 615, End: 690}))
	assert.False(t, g.Aligned(models.Interval{Start: 300, End: 420}))
}
