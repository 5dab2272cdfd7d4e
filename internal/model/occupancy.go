package model

// RoomOccupancy показывает, кто занимает комнату прямо сейчас
type RoomOccupancy struct {
	Room        int          `json:"room"`
	Slot        Slot         `json:"slot,omitempty"` // пусто вне слотов
	Reservation *Reservation `json:"reservation,omitempty"`
	StudentID   string       `json:"student_id,omitempty"`
}

// IsFree проверяет свободна ли комната
func (o RoomOccupancy) IsFree() bool {
	return o.Reservation == nil
}
