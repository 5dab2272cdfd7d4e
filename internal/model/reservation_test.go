package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLegacyStatus(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		slot       Slot
		wantSlot   Slot
		wantStatus ReservationStatus
	}{
		{"slot name in status becomes pending", "morning", "", SlotMorning, ReservationStatusPending},
		{"stored slot wins over legacy status", "afternoon", SlotMorning, SlotMorning, ReservationStatusPending},
		{"regular status is kept", "accepted", SlotAfternoon, SlotAfternoon, ReservationStatusAccepted},
		{"cancelled is kept", "cancelled", SlotMorning, SlotMorning, ReservationStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, status := NormalizeLegacyStatus(tt.raw, tt.slot)
			assert.Equal(t, tt.wantSlot, slot)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestReservationIsActive(t *testing.T) {
	assert.True(t, (&Reservation{Status: ReservationStatusPending}).IsActive())
	assert.True(t, (&Reservation{Status: ReservationStatusAccepted}).IsActive())
	assert.False(t, (&Reservation{Status: ReservationStatusDeclined}).IsActive())
	assert.False(t, (&Reservation{Status: ReservationStatusCancelled}).IsActive())
}
