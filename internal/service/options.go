package service

import (
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/config"
)

// Options содержит общие параметры сервисов
type Options struct {
	Rooms               []int
	Location            *time.Location
	StoreTimeout        time.Duration
	StoreRetries        uint64
	RetryBackoff        time.Duration
	RequireAvailability bool
	OccupancyTTL        time.Duration
	Now                 func() time.Time
}

// OptionsFromConfig собирает Options из конфига приложения
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Rooms:               cfg.Rooms,
		Location:            cfg.Location,
		StoreTimeout:        cfg.StoreTimeout,
		StoreRetries:        cfg.StoreRetries,
		RequireAvailability: cfg.RequireAvailability,
		OccupancyTTL:        cfg.OccupancyTTL,
	}
}

func (o Options) withDefaults() Options {
	if len(o.Rooms) == 0 {
		o.Rooms = []int{1, 2, 3}
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 5 * time.Second
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 100 * time.Millisecond
	}
	if o.OccupancyTTL <= 0 {
		o.OccupancyTTL = time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) roomSet() map[int]struct{} {
	rooms := make(map[int]struct{}, len(o.Rooms))
	for _, room := range o.Rooms {
		rooms[room] = struct{}{}
	}
	return rooms
}
