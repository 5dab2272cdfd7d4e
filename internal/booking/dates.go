package booking

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// DateOf отбрасывает время и возвращает календарную дату как полночь UTC.
// Год, месяц и день берутся в локации самого t.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
	}
	return d, nil
}

// IsPast проверяет, что дата строго раньше сегодняшней
func IsPast(date, today time.Time) bool {
	return DateOf(date).Before(DateOf(today))
}

// MonthRange возвращает [первый день месяца, первый день следующего месяца)
func MonthRange(month time.Month, year int) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
