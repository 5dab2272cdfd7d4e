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

// activeSlotIndex называет частичный уникальный индекс на (date, room, slot) для активных броней
const activeSlotIndex = "reservations_active_slot_uidx"

const reservationColumns = `id, user_id, date, slot, room, status,
	to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at, updated_at`

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт бронь. Занятый слот (нарушение уникального индекса) -> booking.ErrSlotTaken.
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (user_id, date, slot, room, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6::text::time, $7::text::time)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		res.UserID,
		res.Date,
		string(res.Slot),
		res.Room,
		string(res.Status),
		res.StartTime,
		res.EndTime,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, activeSlotIndex) {
			return fmt.Errorf("create reservation: %w", booking.ErrSlotTaken)
		}
		return fmt.Errorf("create reservation: %w", base.Classify(err))
	}

	return nil
}

// GetByID получает бронь по ID. Если брони нет, возвращает nil, nil.
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", base.Classify(err))
	}

	return res, nil
}

// UpdateStatus атомарно меняет статус, только если текущий статус равен from.
// Если бронь уже в другом статусе или удалена, возвращает nil, nil.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, from, to model.ReservationStatus) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING ` + reservationColumns

	res, err := scanReservation(r.QueryRow(ctx, query, id, storedStatuses(from), string(to)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update reservation status: %w", base.Classify(err))
	}

	return res, nil
}

// Delete удаляет бронь физически. Возвращает false, если брони не было.
func (r *ReservationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete reservation: %w", err)
	}
	return affected > 0, nil
}

// List возвращает брони по фильтру. Все условия фильтра объединяются через AND.
func (r *ReservationRepository) List(ctx context.Context, filter model.ReservationFilter) ([]*model.Reservation, error) {
	where := reservationWhere(filter)

	query := `SELECT ` + reservationColumns + ` FROM reservations` + where.SQL()
	switch filter.OrderBy {
	case model.OrderByCreatedDesc:
		query += ` ORDER BY created_at DESC, id DESC`
	default:
		query += ` ORDER BY date, start_time, room, id`
	}
	if filter.Limit > 0 {
		query += ` LIMIT ` + where.Arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + where.Arg(filter.Offset)
	}

	rows, err := r.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", base.Classify(err))
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", base.Classify(err))
	}

	return reservations, nil
}

// reservationWhere переводит фильтр в условия WHERE
func reservationWhere(filter model.ReservationFilter) *base.Where {
	where := &base.Where{}

	if filter.Date != nil {
		where.Add("date = ?", booking.DateOf(*filter.Date))
	}
	if filter.From != nil {
		where.Add("date >= ?", booking.DateOf(*filter.From))
	}
	if filter.To != nil {
		where.Add("date < ?", booking.DateOf(*filter.To))
	}
	if filter.Room != nil {
		where.Add("room = ?", *filter.Room)
	}
	if filter.Slot != nil {
		where.Add("slot = ?", string(*filter.Slot))
	}
	if filter.Status != nil {
		where.Add("status = ANY(?)", storedStatuses(*filter.Status))
	}
	if filter.UserID != nil {
		where.Add("user_id = ?", *filter.UserID)
	}
	if filter.OnlyActive {
		where.Add("status NOT IN (?, ?)", string(model.ReservationStatusCancelled), string(model.ReservationStatusDeclined))
	}

	return where
}

// storedStatuses возвращает значения колонки status, соответствующие статусу.
// Непереведённые старые записи со слотом в status считаются pending.
func storedStatuses(status model.ReservationStatus) []string {
	if status == model.ReservationStatusPending {
		return []string{string(model.ReservationStatusPending), string(model.SlotMorning), string(model.SlotAfternoon)}
	}
	return []string{string(status)}
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		res       model.Reservation
		slot      string
		rawStatus string
	)

	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.Date,
		&slot,
		&res.Room,
		&rawStatus,
		&res.StartTime,
		&res.EndTime,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Slot, res.Status = model.NormalizeLegacyStatus(rawStatus, model.Slot(slot))
	return &res, nil
}
