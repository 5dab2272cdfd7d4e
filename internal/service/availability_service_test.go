package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

func TestAvailabilityWindows(t *testing.T) {
	windows := &fakeAvailability{}
	svc := NewAvailabilityService(windows, newFakeUsers(copyUsers()...), testOptions(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.SetWindow(ctx, actorOf(alice), date(2025, 3, 10), 1, "08:00", true)
	assert.ErrorIs(t, err, booking.ErrUnauthorized)

	_, err = svc.SetWindow(ctx, actorOf(admin), date(2025, 3, 10), 1, "10:00", true)
	assert.ErrorIs(t, err, booking.ErrInvalidSlot)

	_, err = svc.SetWindow(ctx, actorOf(admin), date(2025, 3, 1), 1, "08:00", true)
	assert.ErrorIs(t, err, booking.ErrPastDate)

	w, err := svc.SetWindow(ctx, actorOf(admin), date(2025, 3, 10), 1, "13:00", true)
	require.NoError(t, err)
	assert.Equal(t, "17:00", w.EndTime)

	open, err := svc.IsOpen(ctx, date(2025, 3, 10), 1, model.SlotAfternoon)
	require.NoError(t, err)
	assert.True(t, open)

	open, err = svc.IsOpen(ctx, date(2025, 3, 10), 2, model.SlotAfternoon)
	require.NoError(t, err)
	assert.False(t, open)

	// закрытие того же окна обновляет запись, а не создаёт новую
	closed, err := svc.SetWindow(ctx, actorOf(admin), date(2025, 3, 10), 1, "13:00", false)
	require.NoError(t, err)
	assert.Equal(t, w.ID, closed.ID)

	open, err = svc.IsOpen(ctx, date(2025, 3, 10), 1, model.SlotAfternoon)
	require.NoError(t, err)
	assert.False(t, open)

	list, err := svc.ListWindows(ctx, actorOf(alice), time.March, 2025, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsAvailable)

	room := 9
	_, err = svc.ListWindows(ctx, actorOf(alice), time.March, 2025, &room)
	assert.ErrorIs(t, err, booking.ErrInvalidRoom)
}

func TestListWindowsRequiresActiveAccount(t *testing.T) {
	windows := &fakeAvailability{}
	svc := NewAvailabilityService(windows, newFakeUsers(copyUsers()...), testOptions(), zap.NewNop())

	_, err := svc.ListWindows(context.Background(), actorOf(inactive), time.March, 2025, nil)
	assert.ErrorIs(t, err, booking.ErrUnauthorized)
	assert.Zero(t, windows.calls)
}
