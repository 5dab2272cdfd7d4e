package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// Window содержит границы слота по настенным часам
type Window struct {
	Start string // HH:MM
	End   string // HH:MM
}

// Между утренним и дневным слотом час перерыва, это не ошибка
var windows = map[model.Slot]Window{
	model.SlotMorning:   {Start: "08:00", End: "12:00"},
	model.SlotAfternoon: {Start: "13:00", End: "17:00"},
}

// WindowOf возвращает границы слота
func WindowOf(slot model.Slot) (Window, error) {
	w, ok := windows[slot]
	if !ok {
		return Window{}, fmt.Errorf("slot %q: %w", slot, ErrInvalidSlot)
	}
	return w, nil
}

// SlotFromStartTime сопоставляет время начала слоту. 08:00 -> morning, 13:00 -> afternoon,
// всё остальное ErrInvalidSlot. Секунды ":00" допускаются (так Postgres отдаёт TIME).
func SlotFromStartTime(startTime string) (model.Slot, error) {
	normalized := strings.TrimSpace(startTime)
	if len(normalized) == len("15:04:05") && strings.HasSuffix(normalized, ":00") {
		normalized = strings.TrimSuffix(normalized, ":00")
	}

	for _, slot := range model.Slots() {
		if windows[slot].Start == normalized {
			return slot, nil
		}
	}

	return "", fmt.Errorf("start time %q: %w", startTime, ErrInvalidSlot)
}

// Contains проверяет попадает ли время суток в слот [start, end)
func Contains(slot model.Slot, t time.Time) bool {
	w, ok := windows[slot]
	if !ok {
		return false
	}
	clock := t.Format("15:04")
	return clock >= w.Start && clock < w.End
}

// SlotAt возвращает слот, в который попадает время суток, если такой есть
func SlotAt(t time.Time) (model.Slot, bool) {
	for _, slot := range model.Slots() {
		if Contains(slot, t) {
			return slot, true
		}
	}
	return "", false
}

// ApplySlot проставляет слот и выведенные из него время начала и конца
func ApplySlot(r *model.Reservation, slot model.Slot) error {
	w, err := WindowOf(slot)
	if err != nil {
		return err
	}
	r.Slot = slot
	r.StartTime = w.Start
	r.EndTime = w.End
	return nil
}
