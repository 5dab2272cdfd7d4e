package rest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// Reservations описывает операции над бронями, которые нужны HTTP слою
type Reservations interface {
	Today() time.Time
	Rooms() []int
	RequestBooking(ctx context.Context, actor model.Actor, date time.Time, room int, startTime string) (*model.Reservation, error)
	CancelReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error)
	AcceptReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error)
	DeclineReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, actor model.Actor, id int64) error
	GetReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error)
	ListReservations(ctx context.Context, actor model.Actor, filter model.ReservationFilter, page model.Page) (*model.ReservationPage, error)
	GetCalendar(ctx context.Context, actor model.Actor, month time.Month, year int, policy model.CalendarPolicy) ([]model.CalendarDay, error)
}

// Accounts описывает вход, регистрацию и управление учётными записями
type Accounts interface {
	Register(ctx context.Context, studentID, password string) (*model.User, error)
	Authenticate(ctx context.Context, identifier, secret string) (string, *model.User, error)
	ParseToken(token string) (model.Actor, error)
	SetActive(ctx context.Context, actor model.Actor, id int64, active bool) (*model.User, error)
	ListAccounts(ctx context.Context, actor model.Actor) ([]*model.User, error)
}

// Availability описывает окна доступности комнат
type Availability interface {
	SetWindow(ctx context.Context, actor model.Actor, date time.Time, room int, startTime string, available bool) (*model.AvailabilityWindow, error)
	ListWindows(ctx context.Context, actor model.Actor, month time.Month, year int, room *int) ([]*model.AvailabilityWindow, error)
}

// Occupancy отдаёт текущую занятость комнат
type Occupancy interface {
	Current(ctx context.Context, actor model.Actor, now time.Time) ([]model.RoomOccupancy, error)
}

// Options содержит настройки HTTP слоя
type Options struct {
	RateLimitPerMin int
	TrustProxy      bool // X-Forwarded-For разбирается только за своим обратным прокси
	AllowedOrigins  []string
	Now             func() time.Time
}

// API реализует REST интерфейс планировщика
type API struct {
	reservations Reservations
	accounts     Accounts
	availability Availability
	occupancy    Occupancy
	opts         Options
	logger       *zap.Logger
}

func NewAPI(
	reservations Reservations,
	accounts Accounts,
	availability Availability,
	occupancy Occupancy,
	opts Options,
	logger *zap.Logger,
) *API {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &API{
		reservations: reservations,
		accounts:     accounts,
		availability: availability,
		occupancy:    occupancy,
		opts:         opts,
		logger:       logger,
	}
}
