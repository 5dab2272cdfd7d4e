package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// errUsage возвращается, если аргументы команды не разобрались
var errUsage = errors.New("bad command arguments")

// commandArgs возвращает аргументы команды без самой команды
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// parseBookArgs разбирает "/book <YYYY-MM-DD> <комната> <HH:MM>"
func parseBookArgs(args []string) (time.Time, int, string, error) {
	if len(args) != 3 {
		return time.Time{}, 0, "", fmt.Errorf("want date, room and start time: %w", errUsage)
	}

	date, err := booking.ParseDate(args[0])
	if err != nil {
		return time.Time{}, 0, "", err
	}
	room, err := strconv.Atoi(args[1])
	if err != nil {
		return time.Time{}, 0, "", fmt.Errorf("room %q: %w", args[1], errUsage)
	}

	return date, room, args[2], nil
}

// parseIDArg разбирает единственный аргумент-идентификатор брони
func parseIDArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want reservation id: %w", errUsage)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("reservation id %q: %w", args[0], errUsage)
	}
	return id, nil
}

// parseMonthArg разбирает необязательный аргумент "YYYY-MM", по умолчанию текущий месяц
func parseMonthArg(args []string, today time.Time) (time.Month, int, error) {
	switch len(args) {
	case 0:
		return today.Month(), today.Year(), nil
	case 1:
		t, err := time.Parse("2006-01", args[0])
		if err != nil {
			return 0, 0, fmt.Errorf("month %q: %w", args[0], booking.ErrInvalidDate)
		}
		return t.Month(), t.Year(), nil
	default:
		return 0, 0, fmt.Errorf("want at most one month: %w", errUsage)
	}
}

// parseCallbackID извлекает ID из callback data, например "accept:123" -> 123
func parseCallbackID(data, prefix string) (int64, error) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, fmt.Errorf("callback %q has no prefix %q", data, prefix)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// statusDisplay возвращает emoji и текст для статуса брони
func statusDisplay(status model.ReservationStatus) (string, string) {
	switch status {
	case model.ReservationStatusPending:
		return "⏳", "Ожидает подтверждения"
	case model.ReservationStatusAccepted:
		return "✅", "Подтверждена"
	case model.ReservationStatusDeclined:
		return "🚫", "Отклонена"
	case model.ReservationStatusCancelled:
		return "❌", "Отменена"
	default:
		return "❔", string(status)
	}
}

func slotLabel(slot model.Slot) string {
	switch slot {
	case model.SlotMorning:
		return "утро"
	case model.SlotAfternoon:
		return "день"
	default:
		return string(slot)
	}
}

// formatReservation форматирует бронь для отображения
func formatReservation(r *model.Reservation) string {
	emoji, text := statusDisplay(r.Status)
	return fmt.Sprintf(
		"%s Бронь #%d\n"+
			"📅 %s, %s %s-%s\n"+
			"🚪 Комната %d\n"+
			"📊 Статус: %s",
		emoji, r.ID,
		r.Date.Format("02.01.2006"), slotLabel(r.Slot), r.StartTime, r.EndTime,
		r.Room,
		text,
	)
}

// formatOccupancy форматирует текущую занятость комнат
func formatOccupancy(rooms []model.RoomOccupancy, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏫 Занятость на %s\n\n", now.Format("02.01.2006 15:04"))

	for _, o := range rooms {
		switch {
		case o.Slot == "":
			fmt.Fprintf(&sb, "🚪 Комната %d: вне расписания\n", o.Room)
		case o.IsFree():
			fmt.Fprintf(&sb, "🟢 Комната %d: свободна\n", o.Room)
		default:
			who := o.StudentID
			if who == "" {
				who = fmt.Sprintf("пользователь #%d", o.Reservation.UserID)
			}
			fmt.Fprintf(&sb, "🔴 Комната %d: %s (%s)\n", o.Room, who, slotLabel(o.Slot))
		}
	}

	return sb.String()
}

// decisionKeyboard строит кнопки подтверждения и отклонения брони
func decisionKeyboard(id int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Подтвердить", CallbackData: fmt.Sprintf("%s%d", CallbackAccept, id)},
				{Text: "🚫 Отклонить", CallbackData: fmt.Sprintf("%s%d", CallbackDecline, id)},
			},
		},
	}
}

// cancelKeyboard строит кнопку отмены для активной брони
func cancelKeyboard(id int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "❌ Отменить", CallbackData: fmt.Sprintf("%s%d", CallbackCancel, id)}},
		},
	}
}
