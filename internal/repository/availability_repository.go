package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
	"github.com/Freeeeeet/lab_scheduler/internal/repository/base"
)

const availabilityColumns = `id, date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	room, is_available, created_at, updated_at`

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

// Upsert создаёт окно или обновляет существующее с тем же (date, room, start_time)
func (r *AvailabilityRepository) Upsert(ctx context.Context, w *model.AvailabilityWindow) error {
	query := `
		INSERT INTO lab_availability (date, start_time, end_time, room, is_available)
		VALUES ($1, $2::text::time, $3::text::time, $4, $5)
		ON CONFLICT (date, room, start_time) DO UPDATE
		SET end_time = EXCLUDED.end_time,
		    is_available = EXCLUDED.is_available,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.DateOf(w.Date),
		w.StartTime,
		w.EndTime,
		w.Room,
		w.IsAvailable,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert availability: %w", base.Classify(err))
	}

	return nil
}

// List возвращает окна доступности по фильтру, упорядоченные по дате, комнате и времени
func (r *AvailabilityRepository) List(ctx context.Context, filter model.AvailabilityFilter) ([]*model.AvailabilityWindow, error) {
	where := &base.Where{}
	if filter.From != nil {
		where.Add("date >= ?", booking.DateOf(*filter.From))
	}
	if filter.To != nil {
		where.Add("date < ?", booking.DateOf(*filter.To))
	}
	if filter.Room != nil {
		where.Add("room = ?", *filter.Room)
	}
	if filter.OnlyAvailable {
		where.Add("is_available")
	}

	query := `SELECT ` + availabilityColumns + ` FROM lab_availability` + where.SQL() +
		` ORDER BY date, room, start_time`

	rows, err := r.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	defer rows.Close()

	var windows []*model.AvailabilityWindow
	for rows.Next() {
		w, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", base.Classify(err))
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability: %w", base.Classify(err))
	}

	return windows, nil
}

func scanAvailability(row pgx.Row) (*model.AvailabilityWindow, error) {
	var w model.AvailabilityWindow
	err := row.Scan(
		&w.ID,
		&w.Date,
		&w.StartTime,
		&w.EndTime,
		&w.Room,
		&w.IsAvailable,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
