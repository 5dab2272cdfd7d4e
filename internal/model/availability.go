package model

import "time"

// AvailabilityWindow представляет объявленное администратором окно, когда комната открыта для записи
type AvailabilityWindow struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"` // HH:MM
	EndTime     string    `json:"end_time"`   // HH:MM
	Room        int       `json:"room"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AvailabilityFilter задаёт фильтр выборки окон доступности
type AvailabilityFilter struct {
	From          *time.Time // включительно
	To            *time.Time // не включительно
	Room          *int
	OnlyAvailable bool
}
