package handlers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, []string{"2025-03-10", "1", "08:00"}, commandArgs("/book  2025-03-10 1\t08:00 "))
	assert.Empty(t, commandArgs("/mybookings"))
	assert.Nil(t, commandArgs("   "))
}

func TestParseBookArgs(t *testing.T) {
	date, room, start, err := parseBookArgs([]string{"2025-03-10", "2", "13:00"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, 2, room)
	assert.Equal(t, "13:00", start)

	_, _, _, err = parseBookArgs([]string{"2025-03-10", "2"})
	assert.ErrorIs(t, err, errUsage)

	_, _, _, err = parseBookArgs([]string{"2025-02-30", "2", "13:00"})
	assert.ErrorIs(t, err, booking.ErrInvalidDate)

	_, _, _, err = parseBookArgs([]string{"2025-03-10", "first", "13:00"})
	assert.ErrorIs(t, err, errUsage)
}

func TestParseIDArg(t *testing.T) {
	id, err := parseIDArg([]string{"#15"})
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)

	for _, args := range [][]string{nil, {"1", "2"}, {"abc"}, {"0"}, {"-3"}} {
		_, err := parseIDArg(args)
		assert.ErrorIs(t, err, errUsage, "%v", args)
	}
}

func TestParseMonthArg(t *testing.T) {
	today := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	month, year, err := parseMonthArg(nil, today)
	require.NoError(t, err)
	assert.Equal(t, time.March, month)
	assert.Equal(t, 2025, year)

	month, year, err = parseMonthArg([]string{"2024-12"}, today)
	require.NoError(t, err)
	assert.Equal(t, time.December, month)
	assert.Equal(t, 2024, year)

	_, _, err = parseMonthArg([]string{"2024-13"}, today)
	assert.ErrorIs(t, err, booking.ErrInvalidDate)

	_, _, err = parseMonthArg([]string{"2024-01", "x"}, today)
	assert.ErrorIs(t, err, errUsage)
}

func TestParseCallbackID(t *testing.T) {
	id, err := parseCallbackID("accept:42", CallbackAccept)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseCallbackID("decline:42", CallbackAccept)
	assert.Error(t, err)

	_, err = parseCallbackID("accept:x", CallbackAccept)
	assert.Error(t, err)
}

func TestDecisionKeyboard(t *testing.T) {
	kb := decisionKeyboard(7)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "accept:7", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "decline:7", kb.InlineKeyboard[0][1].CallbackData)

	assert.Equal(t, "cancel:7", cancelKeyboard(7).InlineKeyboard[0][0].CallbackData)
}

func TestFormatReservation(t *testing.T) {
	r := &model.Reservation{
		ID:        3,
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Room:      2,
		Status:    model.ReservationStatusPending,
		Slot:      model.SlotAfternoon,
		StartTime: "13:00",
		EndTime:   "17:00",
	}

	text := formatReservation(r)
	assert.Contains(t, text, "#3")
	assert.Contains(t, text, "10.03.2025")
	assert.Contains(t, text, "13:00-17:00")
	assert.Contains(t, text, "Комната 2")
	assert.Contains(t, text, "Ожидает подтверждения")
}

func TestFormatOccupancy(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	text := formatOccupancy([]model.RoomOccupancy{
		{Room: 1, Slot: model.SlotMorning},
		{Room: 2, Slot: model.SlotMorning, Reservation: &model.Reservation{ID: 5, UserID: 7}, StudentID: "alice"},
		{Room: 3, Slot: model.SlotMorning, Reservation: &model.Reservation{ID: 6, UserID: 8}},
	}, now)

	assert.Contains(t, text, "Комната 1: свободна")
	assert.Contains(t, text, "Комната 2: alice")
	assert.Contains(t, text, "пользователь #8")

	text = formatOccupancy([]model.RoomOccupancy{{Room: 1}}, now)
	assert.Contains(t, text, "вне расписания")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("book: %w", booking.ErrPastDate), "прошедшие"},
		{booking.ErrInvalidSlot, "08:00"},
		{booking.ErrSlotTaken, "занят"},
		{booking.ErrRoomClosed, "закрыта"},
		{booking.ErrNotFound, "не найдена"},
		{booking.ErrUnauthorized, "прав"},
		{fmt.Errorf("%w: timeout", booking.ErrStoreUnavailable), "недоступен"},
		{service.ErrInvalidCredentials, "пароль"},
		{errUsage, "/help"},
		{fmt.Errorf("boom"), "Попробуйте позже"},
	}

	for _, tt := range tests {
		assert.Contains(t, errorMessage(tt.err), tt.want, tt.err.Error())
	}
}
