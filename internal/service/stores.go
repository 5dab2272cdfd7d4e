package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// ReservationStore хранит брони (реализация: repository.ReservationRepository).
// GetByID и UpdateStatus возвращают nil, nil если подходящей записи нет.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.ReservationStatus) (*model.Reservation, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter model.ReservationFilter) ([]*model.Reservation, error)
}

// AvailabilityStore хранит окна доступности лаборатории
type AvailabilityStore interface {
	Upsert(ctx context.Context, w *model.AvailabilityWindow) error
	List(ctx context.Context, filter model.AvailabilityFilter) ([]*model.AvailabilityWindow, error)
}

// UserStore хранит учётные записи
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	LinkTelegram(ctx context.Context, id, telegramID int64) error
	ListAll(ctx context.Context) ([]*model.User, error)
}

// AccountDirectory отдаёт роль и признак активности для проверки прав.
// Возвращает nil, nil для неизвестного id.
type AccountDirectory interface {
	GetAccountByID(ctx context.Context, id int64) (*model.User, error)
}

// AvailabilityChecker проверяет открыта ли комната на слот
type AvailabilityChecker interface {
	IsOpen(ctx context.Context, date time.Time, room int, slot model.Slot) (bool, error)
}

// OccupancyInvalidator сбрасывает закэшированную текущую занятость
type OccupancyInvalidator interface {
	Invalidate()
}
