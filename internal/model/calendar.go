package model

import "time"

// DayStatus описывает итоговую занятость дня в календаре
type DayStatus string

const (
	DayEmpty         DayStatus = "empty"          // ячейка-заполнитель вне месяца
	DayAvailable     DayStatus = "available"      // свободно
	DayMorning       DayStatus = "morning"        // занято только утро
	DayAfternoon     DayStatus = "afternoon"      // занят только день
	DayReserved      DayStatus = "reserved"       // заняты оба слота
	DayOtherReserved DayStatus = "other_reserved" // занято другими пользователями (без деталей)
)

// CalendarPolicy определяет как сворачивать брони в статус дня
type CalendarPolicy string

const (
	// PolicyAggregate учитывает брони всех пользователей (админ и общий календарь)
	PolicyAggregate CalendarPolicy = "aggregate"
	// PolicyOwnership показывает личный календарь: свои брони по слотам, чужие обезличены
	PolicyOwnership CalendarPolicy = "ownership"
)

// Valid проверяет что политика известна
func (p CalendarPolicy) Valid() bool {
	return p == PolicyAggregate || p == PolicyOwnership
}

// CalendarDay представляет ячейку календарной сетки. Не хранится, пересчитывается на каждый запрос.
type CalendarDay struct {
	Date         *time.Time     `json:"date"` // nil для ячеек-заполнителей
	Status       DayStatus      `json:"status"`
	Reservations []*Reservation `json:"reservations,omitempty"`
}

// IsPadding проверяет является ли ячейка заполнителем
func (d CalendarDay) IsPadding() bool {
	return d.Date == nil
}
