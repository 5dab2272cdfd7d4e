package base

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
)

// Repository базовый репозиторий с общими методами
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый базовый репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool возвращает пул соединений
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// QueryRow выполняет запрос и возвращает одну строку
func (r *Repository) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return r.pool.QueryRow(ctx, query, args...)
}

// Query выполняет запрос и возвращает множество строк
func (r *Repository) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, Classify(err)
	}
	return rows, nil
}

// ExecAffected выполняет команду и возвращает количество затронутых строк
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, Classify(err)
	}
	return tag.RowsAffected(), nil
}

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// SQLSTATE коды Postgres, которые нас интересуют
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeAdminShutdown        = "57P01"
	codeCrashShutdown        = "57P02"
	codeCannotConnectNow     = "57P03"
	codeTooManyConnections   = "53300"
)

// IsUniqueViolation проверяет нарушение уникального индекса.
// constraint пустой - подходит любой индекс.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsTransient проверяет что ошибка временная и запрос можно повторить
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeAdminShutdown,
			codeCrashShutdown, codeCannotConnectNow, codeTooManyConnections:
			return true
		}
	}

	return false
}

// Classify помечает временные ошибки хранилища как booking.ErrStoreUnavailable.
// Остальные ошибки возвращаются как есть, их разбирает конкретный репозиторий.
func Classify(err error) error {
	if err == nil || errors.Is(err, booking.ErrStoreUnavailable) {
		return err
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, err)
	}
	return err
}

// Where собирает условия WHERE с позиционными параметрами $1, $2, ...
type Where struct {
	conditions []string
	args       []interface{}
}

// Add добавляет условие. Каждый символ ? в cond заменяется на следующий параметр.
func (w *Where) Add(cond string, args ...interface{}) {
	var b strings.Builder
	next := 0
	for _, ch := range cond {
		if ch == '?' && next < len(args) {
			w.args = append(w.args, args[next])
			b.WriteString("$" + strconv.Itoa(len(w.args)))
			next++
			continue
		}
		b.WriteRune(ch)
	}
	w.conditions = append(w.conditions, b.String())
}

// Arg добавляет параметр без условия и возвращает его placeholder (для LIMIT/OFFSET)
func (w *Where) Arg(arg interface{}) string {
	w.args = append(w.args, arg)
	return "$" + strconv.Itoa(len(w.args))
}

// SQL возвращает " WHERE a AND b" или пустую строку
func (w *Where) SQL() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// Args возвращает параметры в порядке placeholder'ов
func (w *Where) Args() []interface{} {
	return w.args
}
