package base

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
)

func TestWhere(t *testing.T) {
	var w Where
	assert.Equal(t, "", w.SQL())
	assert.Empty(t, w.Args())

	w.Add("date = ?", "2025-03-10")
	w.Add("room = ?", 1)
	w.Add("status NOT IN (?, ?)", "cancelled", "declined")
	w.Add("user_id IS NOT NULL")
	limit := w.Arg(10)

	assert.Equal(t, " WHERE date = $1 AND room = $2 AND status NOT IN ($3, $4) AND user_id IS NOT NULL", w.SQL())
	assert.Equal(t, "$5", limit)
	assert.Equal(t, []interface{}{"2025-03-10", 1, "cancelled", "declined", 10}, w.Args())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"nil", nil, false},
		{"no rows", pgx.ErrNoRows, false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"cancelled by caller", context.Canceled, false},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(got, booking.ErrStoreUnavailable))
			if tt.err != nil {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "reservations_active_slot_uidx"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "reservations_active_slot_uidx"))
	assert.False(t, IsUniqueViolation(err, "users_student_id_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("boom")))
}
