package booking

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// Conflict содержит результат проверки пересечения
type Conflict struct {
	Conflict bool
	Reason   string
	With     *model.Reservation // первая найденная блокирующая бронь
}

// Err возвращает ErrSlotTaken при конфликте
func (c Conflict) Err() error {
	if !c.Conflict {
		return nil
	}
	return fmt.Errorf("%s: %w", c.Reason, ErrSlotTaken)
}

// CheckConflict ищет активную бронь с тем же ключом (date, room, slot).
// Линейный проход, O(n) на проверку. Для больших выборок есть SlotIndex.
// Отменённые и отклонённые брони слот не блокируют. Повторная запись того же
// пользователя на свой же слот не отличается от конфликта двух разных пользователей.
func CheckConflict(date time.Time, room int, slot model.Slot, reservations []*model.Reservation) Conflict {
	day := DateOf(date)
	for _, r := range reservations {
		if r == nil || !r.IsActive() {
			continue
		}
		if r.Room != room || r.Slot != slot || !DateOf(r.Date).Equal(day) {
			continue
		}
		return Conflict{
			Conflict: true,
			Reason:   fmt.Sprintf("room %d is already reserved on %s (%s)", room, day.Format(model.DateLayout), slot),
			With:     r,
		}
	}
	return Conflict{}
}

type slotKey struct {
	date string
	room int
	slot model.Slot
}

// SlotIndex индексирует активные брони по (date, room, slot) для повторных проверок
type SlotIndex struct {
	byKey map[slotKey]*model.Reservation
}

// NewSlotIndex строит индекс. При дублях (аномалия данных) остаётся первая бронь.
func NewSlotIndex(reservations []*model.Reservation) *SlotIndex {
	idx := &SlotIndex{byKey: make(map[slotKey]*model.Reservation, len(reservations))}
	for _, r := range reservations {
		idx.Add(r)
	}
	return idx
}

// Add добавляет активную бронь в индекс
func (idx *SlotIndex) Add(r *model.Reservation) {
	if r == nil || !r.IsActive() {
		return
	}
	key := slotKey{date: r.DateKey(), room: r.Room, slot: r.Slot}
	if _, exists := idx.byKey[key]; !exists {
		idx.byKey[key] = r
	}
}

// Check работает как CheckConflict, но за O(1)
func (idx *SlotIndex) Check(date time.Time, room int, slot model.Slot) Conflict {
	day := DateOf(date)
	existing, ok := idx.byKey[slotKey{date: day.Format(model.DateLayout), room: room, slot: slot}]
	if !ok {
		return Conflict{}
	}
	return Conflict{
		Conflict: true,
		Reason:   fmt.Sprintf("room %d is already reserved on %s (%s)", room, day.Format(model.DateLayout), slot),
		With:     existing,
	}
}
