package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	accountService     *service.AccountService
	reservationService *service.ReservationService
	occupancyService   *service.OccupancyService
	location           *time.Location
	now                func() time.Time
	logger             *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	accountService *service.AccountService,
	reservationService *service.ReservationService,
	occupancyService *service.OccupancyService,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		accountService:     accountService,
		reservationService: reservationService,
		occupancyService:   occupancyService,
		location:           location,
		now:                time.Now,
		logger:             logger,
	}
}
