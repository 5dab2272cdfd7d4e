package booking

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

const daysInWeek = 7

// Project сворачивает брони в сетку месяца. Сетка начинается с понедельника,
// слева добиваются пустые ячейки до первого дня месяца, справа до кратности 7.
// Функция чистая: одинаковые входы дают одинаковый результат. При нескольких
// активных бронях на один день и слот (не должно случаться) берётся первая по порядку.
func Project(month time.Month, year int, reservations []*model.Reservation, viewerID int64, policy model.CalendarPolicy) ([]model.CalendarDay, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("policy %q: %w", policy, ErrInvalidPolicy)
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d out of range", month)
	}

	first, next := MonthRange(month, year)
	byDay := groupByDay(reservations, first, next)

	lead := leadingPadding(first)
	daysInMonth := next.AddDate(0, 0, -1).Day()

	total := lead + daysInMonth
	if rem := total % daysInWeek; rem != 0 {
		total += daysInWeek - rem
	}

	days := make([]model.CalendarDay, 0, total)
	for i := 0; i < lead; i++ {
		days = append(days, emptyDay())
	}

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		dayReservations := byDay[date.Format(model.DateLayout)]

		var day model.CalendarDay
		if policy == model.PolicyOwnership {
			day = projectOwnership(dayReservations, viewerID)
		} else {
			day = projectAggregate(dayReservations)
		}
		day.Date = &date
		days = append(days, day)
	}

	for len(days) < total {
		days = append(days, emptyDay())
	}

	return days, nil
}

// leadingPadding считает пустые ячейки перед первым днём при неделе с понедельника
func leadingPadding(first time.Time) int {
	return (int(first.Weekday()) + 6) % daysInWeek
}

func emptyDay() model.CalendarDay {
	return model.CalendarDay{Status: model.DayEmpty}
}

// groupByDay оставляет только брони месяца, сохраняя исходный порядок внутри дня
func groupByDay(reservations []*model.Reservation, from, to time.Time) map[string][]*model.Reservation {
	byDay := make(map[string][]*model.Reservation)
	for _, r := range reservations {
		if r == nil {
			continue
		}
		date := DateOf(r.Date)
		if date.Before(from) || !date.Before(to) {
			continue
		}
		key := date.Format(model.DateLayout)
		byDay[key] = append(byDay[key], r)
	}
	return byDay
}

// slotStatus сводит занятость двух слотов в статус дня
func slotStatus(morning, afternoon *model.Reservation) model.DayStatus {
	switch {
	case morning != nil && afternoon != nil:
		return model.DayReserved
	case morning != nil:
		return model.DayMorning
	case afternoon != nil:
		return model.DayAfternoon
	default:
		return model.DayAvailable
	}
}

// firstActive возвращает первую активную бронь на слот, подходящую под условие
func firstActive(reservations []*model.Reservation, slot model.Slot, match func(*model.Reservation) bool) *model.Reservation {
	for _, r := range reservations {
		if r.IsActive() && r.Slot == slot && match(r) {
			return r
		}
	}
	return nil
}

func anyReservation(*model.Reservation) bool { return true }

// projectAggregate считает день занятым, если слот держит любая активная бронь
func projectAggregate(reservations []*model.Reservation) model.CalendarDay {
	morning := firstActive(reservations, model.SlotMorning, anyReservation)
	afternoon := firstActive(reservations, model.SlotAfternoon, anyReservation)

	var active []*model.Reservation
	for _, r := range reservations {
		if r.IsActive() {
			active = append(active, r)
		}
	}

	return model.CalendarDay{
		Status:       slotStatus(morning, afternoon),
		Reservations: active,
	}
}

// projectOwnership красит день по своим броням; чужие помечают день
// как other_reserved без деталей по слотам. Свои отменённые брони дают available.
func projectOwnership(reservations []*model.Reservation, viewerID int64) model.CalendarDay {
	own := func(r *model.Reservation) bool { return r.UserID == viewerID }
	morning := firstActive(reservations, model.SlotMorning, own)
	afternoon := firstActive(reservations, model.SlotAfternoon, own)

	if morning != nil || afternoon != nil {
		var mine []*model.Reservation
		for _, r := range reservations {
			if r.IsActive() && own(r) {
				mine = append(mine, r)
			}
		}
		return model.CalendarDay{
			Status:       slotStatus(morning, afternoon),
			Reservations: mine,
		}
	}

	for _, r := range reservations {
		if r.IsActive() && !own(r) {
			return model.CalendarDay{Status: model.DayOtherReserved}
		}
	}

	return model.CalendarDay{Status: model.DayAvailable}
}
