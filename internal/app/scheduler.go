package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

// slotBoundaryCron срабатывает в начале и конце утреннего и дневного слотов
const slotBoundaryCron = "0 8,12,13,17 * * *"

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	cron      *cron.Cron
	occupancy service.OccupancyInvalidator
	logger    *zap.Logger
}

// NewScheduler создаёт планировщик в часовом поясе лаборатории
func NewScheduler(occupancy service.OccupancyInvalidator, location *time.Location, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(location)),
		occupancy: occupancy,
		logger:    logger,
	}

	if _, err := s.cron.AddFunc(slotBoundaryCron, s.purgeOccupancy); err != nil {
		return nil, err
	}

	return s, nil
}

// Start запускает фоновые задачи
func (s *Scheduler) Start() {
	s.logger.Info("Starting background scheduler")
	s.cron.Start()
}

// Stop останавливает фоновые задачи и ждёт завершения запущенных
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

// purgeOccupancy сбрасывает кэш занятости на границе слота
func (s *Scheduler) purgeOccupancy() {
	s.occupancy.Invalidate()
	s.logger.Debug("Occupancy cache purged at slot boundary")
}
