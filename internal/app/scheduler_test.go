package app

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingInvalidator struct{ count int }

func (c *countingInvalidator) Invalidate() { c.count++ }

func TestSlotBoundarySchedule(t *testing.T) {
	schedule, err := cron.ParseStandard(slotBoundaryCron)
	require.NoError(t, err)

	from := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	var fires []string
	next := from
	for i := 0; i < 5; i++ {
		next = schedule.Next(next)
		fires = append(fires, next.Format("01-02 15:04"))
	}

	assert.Equal(t, []string{"03-10 08:00", "03-10 12:00", "03-10 13:00", "03-10 17:00", "03-11 08:00"}, fires)
}

func TestSchedulerPurgesOccupancy(t *testing.T) {
	inv := &countingInvalidator{}
	s, err := NewScheduler(inv, time.UTC, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, s.cron.Entries(), 1)
	s.purgeOccupancy()
	assert.Equal(t, 1, inv.count)

	s.Start()
	s.Stop()
}
