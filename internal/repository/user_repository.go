package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
	"github.com/Freeeeeet/lab_scheduler/internal/repository/base"
)

// ErrDuplicate возвращается, если запись с таким уникальным ключом уже существует
var ErrDuplicate = errors.New("duplicate record")

const userColumns = `id, student_id, password_hash, role, is_active, telegram_id, created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (student_id, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.StudentID,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, "") {
			return fmt.Errorf("create user %q: %w", user.StudentID, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", base.Classify(err))
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, "get user by id", `WHERE id = $1`, id)
}

// GetByStudentID получает пользователя по логину (student id)
func (r *UserRepository) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return r.getOne(ctx, "get user by student id", `WHERE student_id = $1`, studentID)
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return r.getOne(ctx, "get user by telegram id", `WHERE telegram_id = $1`, telegramID)
}

func (r *UserRepository) getOne(ctx context.Context, op, where string, arg interface{}) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where

	user, err := scanUser(r.QueryRow(ctx, query, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("%s: %w", op, base.Classify(err))
	}

	return user, nil
}

// SetActive включает или выключает учётную запись
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("set user active: %w", pgx.ErrNoRows)
	}

	return nil
}

// LinkTelegram привязывает Telegram-аккаунт. Прежняя привязка этого telegram id снимается.
func (r *UserRepository) LinkTelegram(ctx context.Context, id, telegramID int64) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", base.Classify(err))
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `UPDATE users SET telegram_id = NULL WHERE telegram_id = $1 AND id <> $2`, telegramID, id)
	if err != nil {
		return fmt.Errorf("release telegram id: %w", base.Classify(err))
	}

	tag, err := tx.Exec(ctx, `UPDATE users SET telegram_id = $1 WHERE id = $2`, telegramID, id)
	if err != nil {
		return fmt.Errorf("link telegram: %w", base.Classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("link telegram: %w", pgx.ErrNoRows)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", base.Classify(err))
	}

	return nil
}

// ListAll возвращает всех пользователей, сначала администраторов
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	rows, err := r.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY role, student_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", base.Classify(err))
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", base.Classify(err))
	}

	return users, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user model.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.StudentID,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.TelegramID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return &user, nil
}
