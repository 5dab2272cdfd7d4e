package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

func TestTransition(t *testing.T) {
	const (
		pending   = model.ReservationStatusPending
		accepted  = model.ReservationStatusAccepted
		declined  = model.ReservationStatusDeclined
		cancelled = model.ReservationStatusCancelled
	)

	tests := []struct {
		from, to model.ReservationStatus
		changed  bool
	}{
		{pending, accepted, true},
		{pending, declined, true},
		{pending, cancelled, true},
		{accepted, cancelled, true},

		{accepted, declined, false},
		{accepted, pending, false},
		{accepted, accepted, false},
		{pending, pending, false},
		{declined, cancelled, false},
		{declined, accepted, false},
		{cancelled, declined, false},
		{cancelled, accepted, false},
		{cancelled, cancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			next, changed := Transition(tt.from, tt.to)
			assert.Equal(t, tt.changed, changed)
			if tt.changed {
				assert.Equal(t, tt.to, next)
			} else {
				assert.Equal(t, tt.from, next)
			}
		})
	}
}

func TestCanActorTransition(t *testing.T) {
	owner := model.Actor{ID: 7, Role: model.RoleUser}
	stranger := model.Actor{ID: 8, Role: model.RoleUser}
	admin := model.Actor{ID: 1, Role: model.RoleAdmin}
	r := &model.Reservation{ID: 1, UserID: 7, Status: model.ReservationStatusPending}

	assert.True(t, CanActorTransition(owner, r, model.ReservationStatusCancelled))
	assert.False(t, CanActorTransition(stranger, r, model.ReservationStatusCancelled))
	assert.False(t, CanActorTransition(owner, r, model.ReservationStatusAccepted))
	assert.False(t, CanActorTransition(owner, r, model.ReservationStatusDeclined))

	assert.True(t, CanActorTransition(admin, r, model.ReservationStatusAccepted))
	assert.True(t, CanActorTransition(admin, r, model.ReservationStatusDeclined))
	assert.True(t, CanActorTransition(admin, r, model.ReservationStatusCancelled))
}
