package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// AvailabilityService управляет окнами, в которые лаборатория открыта для записи
type AvailabilityService struct {
	windows  AvailabilityStore
	accounts AccountDirectory
	store    storeCaller
	rooms    map[int]struct{}
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewAvailabilityService(windows AvailabilityStore, accounts AccountDirectory, opts Options, logger *zap.Logger) *AvailabilityService {
	opts = opts.withDefaults()
	return &AvailabilityService{
		windows:  windows,
		accounts: accounts,
		store:    newStoreCaller(opts, logger),
		rooms:    opts.roomSet(),
		location: opts.Location,
		now:      opts.Now,
		logger:   logger,
	}
}

// SetWindow открывает или закрывает слот комнаты на дату (только администратор).
// Окно всегда совпадает с границами слота.
func (s *AvailabilityService) SetWindow(ctx context.Context, actor model.Actor, date time.Time, room int, startTime string, available bool) (*model.AvailabilityWindow, error) {
	day := booking.DateOf(date)
	if booking.IsPast(day, booking.DateOf(s.now().In(s.location))) {
		return nil, fmt.Errorf("set availability %s: %w", day.Format(model.DateLayout), booking.ErrPastDate)
	}

	slot, err := booking.SlotFromStartTime(startTime)
	if err != nil {
		return nil, err
	}
	if _, ok := s.rooms[room]; !ok {
		return nil, fmt.Errorf("room %d: %w", room, booking.ErrInvalidRoom)
	}

	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	w, err := booking.WindowOf(slot)
	if err != nil {
		return nil, err
	}

	window := &model.AvailabilityWindow{
		Date:        day,
		StartTime:   w.Start,
		EndTime:     w.End,
		Room:        room,
		IsAvailable: available,
	}

	err = s.store.call(ctx, "upsert availability", func(ctx context.Context) error {
		return s.windows.Upsert(ctx, window)
	})
	if err != nil {
		return nil, fmt.Errorf("save availability: %w", err)
	}

	s.logger.Info("Availability window saved",
		zap.Int64("window_id", window.ID),
		zap.Int64("actor_id", actor.ID),
		zap.String("date", day.Format(model.DateLayout)),
		zap.Int("room", room),
		zap.String("slot", string(slot)),
		zap.Bool("available", available),
	)

	return window, nil
}

// ListWindows возвращает окна месяца, при room != nil только для одной комнаты.
// Доступно любому активному аккаунту.
func (s *AvailabilityService) ListWindows(ctx context.Context, actor model.Actor, month time.Month, year int, room *int) ([]*model.AvailabilityWindow, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d: %w", month, booking.ErrInvalidDate)
	}
	if room != nil {
		if _, ok := s.rooms[*room]; !ok {
			return nil, fmt.Errorf("room %d: %w", *room, booking.ErrInvalidRoom)
		}
	}

	if _, err := activeActor(ctx, s.store, s.accounts, actor); err != nil {
		return nil, err
	}

	from, to := booking.MonthRange(month, year)

	var windows []*model.AvailabilityWindow
	err := s.store.call(ctx, "list availability", func(ctx context.Context) error {
		var err error
		windows, err = s.windows.List(ctx, model.AvailabilityFilter{From: &from, To: &to, Room: room})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}

	if windows == nil {
		windows = []*model.AvailabilityWindow{}
	}
	return windows, nil
}

// IsOpen проверяет есть ли открытое окно, начинающееся вместе со слотом
func (s *AvailabilityService) IsOpen(ctx context.Context, date time.Time, room int, slot model.Slot) (bool, error) {
	w, err := booking.WindowOf(slot)
	if err != nil {
		return false, err
	}

	from := booking.DateOf(date)
	to := from.AddDate(0, 0, 1)

	var windows []*model.AvailabilityWindow
	err = s.store.call(ctx, "list availability", func(ctx context.Context) error {
		var err error
		windows, err = s.windows.List(ctx, model.AvailabilityFilter{
			From:          &from,
			To:            &to,
			Room:          &room,
			OnlyAvailable: true,
		})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("list availability: %w", err)
	}

	for _, window := range windows {
		if window.IsAvailable && window.StartTime == w.Start {
			return true, nil
		}
	}
	return false, nil
}

func (s *AvailabilityService) requireAdmin(ctx context.Context, actor model.Actor) error {
	actor, err := activeActor(ctx, s.store, s.accounts, actor)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("manage availability: %w", booking.ErrUnauthorized)
	}
	return nil
}
