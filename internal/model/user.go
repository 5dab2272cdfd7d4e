package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid проверяет что роль известна
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User представляет учётную запись каталога пользователей
type User struct {
	ID           int64     `json:"id"`
	StudentID    string    `json:"student_id"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	TelegramID   *int64    `json:"telegram_id,omitempty"` // указатель - аккаунт может быть не привязан
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin проверяет роль администратора
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor выполняет операцию. Передаётся явно в каждый вызов сервиса.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsAdmin проверяет роль администратора
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ActorOf строит Actor из учётной записи
func ActorOf(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
