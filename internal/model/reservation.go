package model

import "time"

// Slot обозначает один из двух фиксированных полудневных интервалов
type Slot string

const (
	SlotMorning   Slot = "morning"   // 08:00-12:00
	SlotAfternoon Slot = "afternoon" // 13:00-17:00
)

// Slots возвращает все слоты в порядке следования в течение дня
func Slots() []Slot {
	return []Slot{SlotMorning, SlotAfternoon}
}

// Valid проверяет что значение является известным слотом
func (s Slot) Valid() bool {
	return s == SlotMorning || s == SlotAfternoon
}

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"   // Ожидает решения администратора
	ReservationStatusAccepted  ReservationStatus = "accepted"  // Одобрено
	ReservationStatusDeclined  ReservationStatus = "declined"  // Отклонено администратором
	ReservationStatusCancelled ReservationStatus = "cancelled" // Отменено
)

// Valid проверяет что статус известен
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusAccepted, ReservationStatusDeclined, ReservationStatusCancelled:
		return true
	}
	return false
}

// IsActive проверяет, что бронь не отменена и не отклонена
func (s ReservationStatus) IsActive() bool {
	return s != ReservationStatusCancelled && s != ReservationStatusDeclined
}

// IsTerminal проверяет, что из статуса переходов нет
func (s ReservationStatus) IsTerminal() bool {
	return !s.IsActive()
}

// InactiveStatuses перечисляет статусы, которые не блокируют слот
func InactiveStatuses() []ReservationStatus {
	return []ReservationStatus{ReservationStatusCancelled, ReservationStatusDeclined}
}

type Reservation struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Date      time.Time         `json:"date"` // полночь UTC, без времени
	Slot      Slot              `json:"slot"`
	Room      int               `json:"room"`
	Status    ReservationStatus `json:"status"`
	StartTime string            `json:"start_time"` // HH:MM, выводится из Slot
	EndTime   string            `json:"end_time"`   // HH:MM, выводится из Slot
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsActive проверяет занимает ли бронь слот
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}

// DateKey возвращает дату в формате YYYY-MM-DD
func (r *Reservation) DateKey() string {
	return r.Date.Format(DateLayout)
}

// DateLayout задаёт формат календарной даты во всех внешних интерфейсах
const DateLayout = "2006-01-02"

// NormalizeLegacyStatus разводит старое значение status на слот и статус одобрения.
// Старый клиент записывал в status название слота ("morning"/"afternoon") как
// отметку "забронировано"; такие записи считаются pending с этим слотом.
func NormalizeLegacyStatus(rawStatus string, slot Slot) (Slot, ReservationStatus) {
	legacy := Slot(rawStatus)
	if legacy.Valid() {
		if !slot.Valid() {
			slot = legacy
		}
		return slot, ReservationStatusPending
	}
	return slot, ReservationStatus(rawStatus)
}

// ReservationFilter задаёт фильтр выборки броней, все поля комбинируются через AND
type ReservationFilter struct {
	Date       *time.Time
	From       *time.Time // включительно
	To         *time.Time // не включительно
	Room       *int
	Slot       *Slot
	Status     *ReservationStatus
	UserID     *int64
	OnlyActive bool
	OrderBy    ReservationOrder
	Limit      int
	Offset     int
}

type ReservationOrder string

const (
	OrderByDate        ReservationOrder = "date"         // по дате и слоту, по возрастанию
	OrderByCreatedDesc ReservationOrder = "created_desc" // новые сверху
)

// Page содержит номер страницы (с 1) и размер страницы
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize подставляет значения по умолчанию
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset возвращает смещение первой записи страницы
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

// ReservationPage содержит страницу результатов выборки
type ReservationPage struct {
	Items   []*Reservation `json:"items"`
	Page    Page           `json:"page"`
	HasNext bool           `json:"has_next"`
}
