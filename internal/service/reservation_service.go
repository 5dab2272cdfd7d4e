package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// maxTransitionAttempts ограничивает число перечитываний брони, если её статус
// успели изменить между чтением и compare-and-set обновлением
const maxTransitionAttempts = 3

// ReservationService объединяет валидацию, права, проверку конфликтов и хранилище броней
type ReservationService struct {
	reservations ReservationStore
	accounts     AccountDirectory
	availability AvailabilityChecker
	occupancy    OccupancyInvalidator

	store               storeCaller
	locks               *keyedMutex
	rooms               map[int]struct{}
	requireAvailability bool
	location            *time.Location
	now                 func() time.Time
	logger              *zap.Logger
}

// NewReservationService создаёт сервис. availability и occupancy могут быть nil.
func NewReservationService(
	reservations ReservationStore,
	accounts AccountDirectory,
	availability AvailabilityChecker,
	occupancy OccupancyInvalidator,
	opts Options,
	logger *zap.Logger,
) *ReservationService {
	opts = opts.withDefaults()
	return &ReservationService{
		reservations:        reservations,
		accounts:            accounts,
		availability:        availability,
		occupancy:           occupancy,
		store:               newStoreCaller(opts, logger),
		locks:               newKeyedMutex(),
		rooms:               opts.roomSet(),
		requireAvailability: opts.RequireAvailability,
		location:            opts.Location,
		now:                 opts.Now,
		logger:              logger,
	}
}

// Today возвращает сегодняшнюю дату в часовом поясе лаборатории
func (s *ReservationService) Today() time.Time {
	return booking.DateOf(s.now().In(s.location))
}

// RequestBooking создаёт бронь в статусе pending.
// Дата, время начала и комната проверяются до любого обращения к хранилищу.
func (s *ReservationService) RequestBooking(ctx context.Context, actor model.Actor, date time.Time, room int, startTime string) (*model.Reservation, error) {
	day := booking.DateOf(date)
	if booking.IsPast(day, s.Today()) {
		return nil, fmt.Errorf("book %s: %w", day.Format(model.DateLayout), booking.ErrPastDate)
	}

	slot, err := booking.SlotFromStartTime(startTime)
	if err != nil {
		return nil, err
	}

	if err := s.validateRoom(room); err != nil {
		return nil, err
	}

	actor, err = s.authorize(ctx, actor)
	if err != nil {
		return nil, err
	}

	if s.requireAvailability && s.availability != nil {
		open, err := s.availability.IsOpen(ctx, day, room, slot)
		if err != nil {
			return nil, fmt.Errorf("check availability: %w", err)
		}
		if !open {
			return nil, fmt.Errorf("room %d on %s (%s): %w", room, day.Format(model.DateLayout), slot, booking.ErrRoomClosed)
		}
	}

	// проверка и вставка для одной (date, room) сериализуются внутри процесса,
	// между процессами гарантию даёт уникальный индекс хранилища
	unlock := s.locks.Lock(day.Format(model.DateLayout) + "/" + strconv.Itoa(room))
	defer unlock()

	var existing []*model.Reservation
	err = s.store.call(ctx, "list reservations", func(ctx context.Context) error {
		var err error
		existing, err = s.reservations.List(ctx, model.ReservationFilter{
			Date:       &day,
			Room:       &room,
			OnlyActive: true,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	if conflict := booking.CheckConflict(day, room, slot, existing); conflict.Conflict {
		s.logger.Info("Booking rejected: slot taken",
			zap.Int64("user_id", actor.ID),
			zap.Int64("conflict_with", conflict.With.ID),
			zap.String("date", day.Format(model.DateLayout)),
			zap.Int("room", room),
			zap.String("slot", string(slot)),
		)
		return nil, conflict.Err()
	}

	reservation := &model.Reservation{
		UserID: actor.ID,
		Date:   day,
		Room:   room,
		Status: model.ReservationStatusPending,
	}
	if err := booking.ApplySlot(reservation, slot); err != nil {
		return nil, err
	}

	attempts := 0
	err = s.store.call(ctx, "create reservation", func(ctx context.Context) error {
		attempts++
		return s.reservations.Create(ctx, reservation)
	})
	if err != nil && attempts > 1 && errors.Is(err, booking.ErrSlotTaken) {
		// предыдущая попытка могла записать бронь и не дождаться ответа;
		// слот был свободен под блокировкой, так что своя активная бронь это она
		var own *model.Reservation
		own, err = s.findOwnActive(ctx, actor, day, room, slot)
		if err == nil && own == nil {
			err = booking.ErrSlotTaken
		}
		if own != nil {
			s.logger.Warn("Create retried after commit, returning stored reservation",
				zap.Int64("reservation_id", own.ID),
				zap.Int64("user_id", actor.ID),
				zap.Int("attempts", attempts),
			)
			reservation = own
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.invalidateOccupancy()

	s.logger.Info("Reservation requested",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("user_id", actor.ID),
		zap.String("date", reservation.DateKey()),
		zap.Int("room", room),
		zap.String("slot", string(slot)),
	)

	return reservation, nil
}

// Transition переводит бронь в статус target. Недопустимый переход (например отмена
// уже отклонённой брони) не ошибка: возвращается бронь без изменений.
func (s *ReservationService) Transition(ctx context.Context, actor model.Actor, id int64, target model.ReservationStatus) (*model.Reservation, error) {
	if !target.Valid() || target == model.ReservationStatusPending {
		return nil, fmt.Errorf("target %q: %w", target, booking.ErrInvalidStatus)
	}

	actor, err := s.authorize(ctx, actor)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}

		if !booking.CanActorTransition(actor, current, target) {
			return nil, fmt.Errorf("%s reservation %d: %w", target, id, booking.ErrUnauthorized)
		}

		next, changed := booking.Transition(current.Status, target)
		if !changed {
			s.logger.Debug("Transition is a no-op",
				zap.Int64("reservation_id", id),
				zap.String("status", string(current.Status)),
				zap.String("target", string(target)),
			)
			return current, nil
		}

		var updated *model.Reservation
		err = s.store.call(ctx, "update reservation status", func(ctx context.Context) error {
			var err error
			updated, err = s.reservations.UpdateStatus(ctx, id, current.Status, next)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("update reservation status: %w", err)
		}

		if updated != nil {
			s.invalidateOccupancy()
			s.logger.Info("Reservation status changed",
				zap.Int64("reservation_id", id),
				zap.Int64("actor_id", actor.ID),
				zap.String("from", string(current.Status)),
				zap.String("to", string(next)),
			)
			return updated, nil
		}

		// статус изменили параллельно, перечитываем
		if attempt >= maxTransitionAttempts {
			return s.load(ctx, id)
		}
	}
}

// CancelReservation отменяет бронь (владелец или администратор)
func (s *ReservationService) CancelReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	return s.Transition(ctx, actor, id, model.ReservationStatusCancelled)
}

// AcceptReservation одобряет бронь (только администратор)
func (s *ReservationService) AcceptReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	return s.Transition(ctx, actor, id, model.ReservationStatusAccepted)
}

// DeclineReservation отклоняет бронь (только администратор)
func (s *ReservationService) DeclineReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	return s.Transition(ctx, actor, id, model.ReservationStatusDeclined)
}

// DeleteReservation физически удаляет бронь (только администратор)
func (s *ReservationService) DeleteReservation(ctx context.Context, actor model.Actor, id int64) error {
	actor, err := s.authorize(ctx, actor)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("delete reservation %d: %w", id, booking.ErrUnauthorized)
	}

	var deleted bool
	err = s.store.call(ctx, "delete reservation", func(ctx context.Context) error {
		var err error
		deleted, err = s.reservations.Delete(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if !deleted {
		return fmt.Errorf("delete reservation %d: %w", id, booking.ErrNotFound)
	}

	s.invalidateOccupancy()

	s.logger.Info("Reservation deleted",
		zap.Int64("reservation_id", id),
		zap.Int64("actor_id", actor.ID),
	)

	return nil
}

// GetReservation возвращает бронь владельцу или администратору
func (s *ReservationService) GetReservation(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error) {
	actor, err := s.authorize(ctx, actor)
	if err != nil {
		return nil, err
	}

	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && reservation.UserID != actor.ID {
		return nil, fmt.Errorf("get reservation %d: %w", id, booking.ErrUnauthorized)
	}

	return reservation, nil
}

// ListReservations возвращает страницу броней по фильтру.
// Обычный пользователь видит только свои брони независимо от фильтра.
func (s *ReservationService) ListReservations(ctx context.Context, actor model.Actor, filter model.ReservationFilter, page model.Page) (*model.ReservationPage, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("status %q: %w", *filter.Status, booking.ErrInvalidStatus)
	}
	if filter.Room != nil {
		if err := s.validateRoom(*filter.Room); err != nil {
			return nil, err
		}
	}

	actor, err := s.authorize(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		filter.UserID = &actor.ID
	}

	page = page.Normalize()
	filter.Limit = page.Size + 1
	filter.Offset = page.Offset()
	if filter.OrderBy == "" {
		filter.OrderBy = model.OrderByCreatedDesc
	}

	var items []*model.Reservation
	err = s.store.call(ctx, "list reservations", func(ctx context.Context) error {
		var err error
		items, err = s.reservations.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	result := &model.ReservationPage{Items: items, Page: page}
	if len(items) > page.Size {
		result.Items = items[:page.Size]
		result.HasNext = true
	}
	if result.Items == nil {
		result.Items = []*model.Reservation{}
	}

	return result, nil
}

// GetCalendar загружает брони месяца и сворачивает их в календарную сетку
func (s *ReservationService) GetCalendar(ctx context.Context, actor model.Actor, month time.Month, year int, policy model.CalendarPolicy) ([]model.CalendarDay, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("policy %q: %w", policy, booking.ErrInvalidPolicy)
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d: %w", month, booking.ErrInvalidDate)
	}

	actor, err := s.authorize(ctx, actor)
	if err != nil {
		return nil, err
	}

	from, to := booking.MonthRange(month, year)

	var reservations []*model.Reservation
	err = s.store.call(ctx, "list month reservations", func(ctx context.Context) error {
		var err error
		reservations, err = s.reservations.List(ctx, model.ReservationFilter{
			From:       &from,
			To:         &to,
			OnlyActive: true,
			OrderBy:    model.OrderByDate,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load month reservations: %w", err)
	}

	return booking.Project(month, year, reservations, actor.ID, policy)
}

// Rooms возвращает список комнат в порядке конфигурации
func (s *ReservationService) Rooms() []int {
	rooms := make([]int, 0, len(s.rooms))
	for room := range s.rooms {
		rooms = append(rooms, room)
	}
	slices.Sort(rooms)
	return rooms
}

func (s *ReservationService) validateRoom(room int) error {
	if _, ok := s.rooms[room]; !ok {
		return fmt.Errorf("room %d: %w", room, booking.ErrInvalidRoom)
	}
	return nil
}

// authorize сверяет actor с каталогом учётных записей: аккаунт должен существовать
// и быть активным. Роль берётся из каталога, а не из запроса.
// findOwnActive ищет активную бронь actor на (date, room, slot)
func (s *ReservationService) findOwnActive(ctx context.Context, actor model.Actor, day time.Time, room int, slot model.Slot) (*model.Reservation, error) {
	var found []*model.Reservation
	err := s.store.call(ctx, "list reservations", func(ctx context.Context) error {
		var err error
		found, err = s.reservations.List(ctx, model.ReservationFilter{
			Date:       &day,
			Room:       &room,
			Slot:       &slot,
			OnlyActive: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, r := range found {
		if r.UserID == actor.ID {
			return r, nil
		}
	}
	return nil, nil
}

func (s *ReservationService) authorize(ctx context.Context, actor model.Actor) (model.Actor, error) {
	return activeActor(ctx, s.store, s.accounts, actor)
}

func (s *ReservationService) load(ctx context.Context, id int64) (*model.Reservation, error) {
	var reservation *model.Reservation
	err := s.store.call(ctx, "get reservation", func(ctx context.Context) error {
		var err error
		reservation, err = s.reservations.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %d: %w", id, booking.ErrNotFound)
	}
	return reservation, nil
}

func (s *ReservationService) invalidateOccupancy() {
	if s.occupancy != nil {
		s.occupancy.Invalidate()
	}
}
