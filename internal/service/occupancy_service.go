package service

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

const occupancyCacheSize = 8

// OccupancyService отвечает на вопрос "кто сейчас в лаборатории".
// Ответ кэшируется на короткое время и сбрасывается при любой записи броней.
type OccupancyService struct {
	reservations ReservationStore
	accounts     AccountDirectory
	store        storeCaller
	rooms        []int
	location     *time.Location
	cache        *expirable.LRU[string, []model.RoomOccupancy]
	// generation растёт на каждом Invalidate; ответ, прочитанный до сброса, в кэш не попадает
	generation atomic.Uint64
	logger     *zap.Logger
}

func NewOccupancyService(reservations ReservationStore, accounts AccountDirectory, opts Options, logger *zap.Logger) *OccupancyService {
	opts = opts.withDefaults()

	rooms := slices.Clone(opts.Rooms)
	slices.Sort(rooms)

	return &OccupancyService{
		reservations: reservations,
		accounts:     accounts,
		store:        newStoreCaller(opts, logger),
		rooms:        rooms,
		location:     opts.Location,
		cache:        expirable.NewLRU[string, []model.RoomOccupancy](occupancyCacheSize, nil, opts.OccupancyTTL),
		logger:       logger,
	}
}

// Current возвращает занятость каждой комнаты на момент now.
// Вне слотов (ночью, в обеденный перерыв) все комнаты свободны и брони не запрашиваются.
func (s *OccupancyService) Current(ctx context.Context, actor model.Actor, now time.Time) ([]model.RoomOccupancy, error) {
	if _, err := activeActor(ctx, s.store, s.accounts, actor); err != nil {
		return nil, err
	}

	local := now.In(s.location)
	today := booking.DateOf(local)

	slot, inSlot := booking.SlotAt(local)
	if !inSlot {
		return s.emptyRooms(""), nil
	}

	key := today.Format(model.DateLayout) + "/" + string(slot)
	if cached, ok := s.cache.Get(key); ok {
		return slices.Clone(cached), nil
	}

	generation := s.generation.Load()

	var reservations []*model.Reservation
	err := s.store.call(ctx, "list current reservations", func(ctx context.Context) error {
		var err error
		reservations, err = s.reservations.List(ctx, model.ReservationFilter{
			Date:       &today,
			Slot:       &slot,
			OnlyActive: true,
			OrderBy:    model.OrderByDate,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load current reservations: %w", err)
	}

	idx := booking.NewSlotIndex(reservations)
	result := s.emptyRooms(slot)
	for i := range result {
		conflict := idx.Check(today, result[i].Room, slot)
		if !conflict.Conflict {
			continue
		}
		result[i].Reservation = conflict.With
		result[i].StudentID = s.studentID(ctx, conflict.With.UserID)
	}

	if s.generation.Load() == generation {
		s.cache.Add(key, result)
	}

	return slices.Clone(result), nil
}

// Invalidate сбрасывает кэш занятости
func (s *OccupancyService) Invalidate() {
	s.generation.Add(1)
	s.cache.Purge()
}

func (s *OccupancyService) emptyRooms(slot model.Slot) []model.RoomOccupancy {
	result := make([]model.RoomOccupancy, 0, len(s.rooms))
	for _, room := range s.rooms {
		result = append(result, model.RoomOccupancy{Room: room, Slot: slot})
	}
	return result
}

// studentID подтягивает логин занявшего комнату; ошибка каталога не ломает ответ
func (s *OccupancyService) studentID(ctx context.Context, userID int64) string {
	var user *model.User
	err := s.store.call(ctx, "get account", func(ctx context.Context) error {
		var err error
		user, err = s.accounts.GetAccountByID(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Warn("Failed to resolve occupant", zap.Int64("user_id", userID), zap.Error(err))
		return ""
	}
	if user == nil {
		return ""
	}
	return user.StudentID
}
