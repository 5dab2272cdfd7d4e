package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

type calendarQuery struct {
	Month  time.Month
	Year   int
	Policy model.CalendarPolicy
}

// parseReservationQuery разбирает фильтр и страницу списка броней.
// Неизвестные параметры игнорируются.
func parseReservationQuery(q url.Values) (model.ReservationFilter, model.Page, error) {
	var filter model.ReservationFilter
	var err error

	if filter.Date, err = optionalDate(q, "date"); err != nil {
		return filter, model.Page{}, err
	}
	if filter.From, err = optionalDate(q, "from"); err != nil {
		return filter, model.Page{}, err
	}
	if filter.To, err = optionalDate(q, "to"); err != nil {
		return filter, model.Page{}, err
	}
	if filter.Room, err = optionalInt(q, "room"); err != nil {
		return filter, model.Page{}, err
	}

	if raw := q.Get("slot"); raw != "" {
		slot := model.Slot(raw)
		if !slot.Valid() {
			return filter, model.Page{}, fmt.Errorf("slot %q: %w", raw, booking.ErrInvalidSlot)
		}
		filter.Slot = &slot
	}
	if raw := q.Get("status"); raw != "" {
		status := model.ReservationStatus(raw)
		filter.Status = &status
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, model.Page{}, fmt.Errorf("%w: user_id: %v", errBadRequest, err)
		}
		filter.UserID = &id
	}
	if raw := q.Get("active"); raw != "" {
		if filter.OnlyActive, err = strconv.ParseBool(raw); err != nil {
			return filter, model.Page{}, fmt.Errorf("%w: active: %v", errBadRequest, err)
		}
	}

	switch order := model.ReservationOrder(q.Get("order")); order {
	case "", model.OrderByDate, model.OrderByCreatedDesc:
		filter.OrderBy = order
	default:
		return filter, model.Page{}, fmt.Errorf("%w: order %q", errBadRequest, order)
	}

	var page model.Page
	number, err := optionalInt(q, "page")
	if err != nil {
		return filter, model.Page{}, err
	}
	size, err := optionalInt(q, "page_size")
	if err != nil {
		return filter, model.Page{}, err
	}
	if number != nil {
		page.Number = *number
	}
	if size != nil {
		page.Size = *size
	}

	return filter, page.Normalize(), nil
}

// parseCalendarQuery разбирает month, year и policy. По умолчанию берётся текущий
// месяц, администратору показывается общий календарь, остальным личный.
func parseCalendarQuery(q url.Values, actor model.Actor, today time.Time) (calendarQuery, error) {
	month, year, err := parseMonth(q, today)
	if err != nil {
		return calendarQuery{}, err
	}

	policy := model.CalendarPolicy(q.Get("policy"))
	if policy == "" {
		policy = model.PolicyOwnership
		if actor.IsAdmin() {
			policy = model.PolicyAggregate
		}
	}
	if !policy.Valid() {
		return calendarQuery{}, fmt.Errorf("policy %q: %w", policy, booking.ErrInvalidPolicy)
	}

	return calendarQuery{Month: month, Year: year, Policy: policy}, nil
}

func parseMonth(q url.Values, today time.Time) (time.Month, int, error) {
	month, year := today.Month(), today.Year()

	m, err := optionalInt(q, "month")
	if err != nil {
		return 0, 0, err
	}
	if m != nil {
		if *m < 1 || *m > 12 {
			return 0, 0, fmt.Errorf("month %d: %w", *m, booking.ErrInvalidDate)
		}
		month = time.Month(*m)
	}

	y, err := optionalInt(q, "year")
	if err != nil {
		return 0, 0, err
	}
	if y != nil {
		year = *y
	}

	return month, year, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errBadRequest, key, err)
	}
	return &n, nil
}

func optionalDate(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := booking.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &d, nil
}
