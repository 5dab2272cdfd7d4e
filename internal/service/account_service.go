package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Freeeeeet/lab_scheduler/internal/auth"
	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
	"github.com/Freeeeeet/lab_scheduler/internal/repository"
)

const minPasswordLength = 6

// AccountService управляет каталогом учётных записей: регистрация, вход, роли и активность
type AccountService struct {
	users  UserStore
	tokens *auth.TokenIssuer
	store  storeCaller
	logger *zap.Logger
}

func NewAccountService(users UserStore, tokens *auth.TokenIssuer, opts Options, logger *zap.Logger) *AccountService {
	opts = opts.withDefaults()
	return &AccountService{
		users:  users,
		tokens: tokens,
		store:  newStoreCaller(opts, logger),
		logger: logger,
	}
}

// Register создаёт активную учётную запись с ролью user
func (s *AccountService) Register(ctx context.Context, studentID, password string) (*model.User, error) {
	return s.create(ctx, studentID, password, model.RoleUser)
}

// EnsureAdmin создаёт администратора, если учётной записи с таким логином ещё нет
func (s *AccountService) EnsureAdmin(ctx context.Context, studentID, password string) (*model.User, error) {
	existing, err := s.getByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.create(ctx, studentID, password, model.RoleAdmin)
}

func (s *AccountService) create(ctx context.Context, studentID, password string, role model.Role) (*model.User, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" || len(password) < minPasswordLength {
		return nil, fmt.Errorf("student id must be set and password at least %d characters: %w", minPasswordLength, ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		StudentID:    studentID,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	err = s.store.call(ctx, "create user", func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("register %q: %w", studentID, ErrAccountExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("Account registered",
		zap.Int64("user_id", user.ID),
		zap.String("student_id", studentID),
		zap.String("role", string(role)),
	)

	return user, nil
}

// Authenticate проверяет логин и пароль и выпускает токен сессии.
// Деактивированная учётная запись войти не может.
func (s *AccountService) Authenticate(ctx context.Context, identifier, secret string) (string, *model.User, error) {
	user, err := s.checkCredentials(ctx, identifier, secret)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(model.ActorOf(user))
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("Account authenticated", zap.Int64("user_id", user.ID))

	return token, user, nil
}

// ParseToken проверяет токен сессии и возвращает actor
func (s *AccountService) ParseToken(token string) (model.Actor, error) {
	actor, err := s.tokens.Parse(token)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %w", booking.ErrUnauthorized, err)
	}
	return actor, nil
}

// GetAccountByID возвращает учётную запись или nil, nil
func (s *AccountService) GetAccountByID(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := s.store.call(ctx, "get user", func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ActorByTelegramID возвращает actor привязанного и активного аккаунта
func (s *AccountService) ActorByTelegramID(ctx context.Context, telegramID int64) (model.Actor, error) {
	var user *model.User
	err := s.store.call(ctx, "get user by telegram id", func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByTelegramID(ctx, telegramID)
		return err
	})
	if err != nil {
		return model.Actor{}, fmt.Errorf("get user: %w", err)
	}

	if user == nil {
		return model.Actor{}, fmt.Errorf("telegram account %d is not linked: %w", telegramID, ErrAccountNotFound)
	}
	if !user.IsActive {
		return model.Actor{}, fmt.Errorf("account %d is deactivated: %w", user.ID, booking.ErrUnauthorized)
	}

	return model.ActorOf(user), nil
}

// LinkTelegram привязывает Telegram-аккаунт к учётной записи после проверки пароля
func (s *AccountService) LinkTelegram(ctx context.Context, telegramID int64, identifier, secret string) (*model.User, error) {
	user, err := s.checkCredentials(ctx, identifier, secret)
	if err != nil {
		return nil, err
	}

	err = s.store.call(ctx, "link telegram", func(ctx context.Context) error {
		return s.users.LinkTelegram(ctx, user.ID, telegramID)
	})
	if err != nil {
		return nil, fmt.Errorf("link telegram: %w", err)
	}

	user.TelegramID = &telegramID

	s.logger.Info("Telegram account linked",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
	)

	return user, nil
}

// SetActive активирует или деактивирует учётную запись (только администратор).
// Деактивировать самого себя нельзя.
func (s *AccountService) SetActive(ctx context.Context, actor model.Actor, id int64, active bool) (*model.User, error) {
	admin, err := s.GetAccountByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.IsActive || !admin.IsAdmin() {
		return nil, fmt.Errorf("set account active: %w", booking.ErrUnauthorized)
	}
	if id == admin.ID && !active {
		return nil, fmt.Errorf("deactivate own account: %w", booking.ErrUnauthorized)
	}

	user, err := s.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}

	if user.IsActive != active {
		err = s.store.call(ctx, "set user active", func(ctx context.Context) error {
			return s.users.SetActive(ctx, id, active)
		})
		if err != nil {
			return nil, fmt.Errorf("set user active: %w", err)
		}
		user.IsActive = active
	}

	s.logger.Info("Account active flag changed",
		zap.Int64("user_id", id),
		zap.Int64("actor_id", admin.ID),
		zap.Bool("active", active),
	)

	return user, nil
}

// ListAccounts возвращает все учётные записи (только администратор)
func (s *AccountService) ListAccounts(ctx context.Context, actor model.Actor) ([]*model.User, error) {
	admin, err := s.GetAccountByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.IsActive || !admin.IsAdmin() {
		return nil, fmt.Errorf("list accounts: %w", booking.ErrUnauthorized)
	}

	var users []*model.User
	err = s.store.call(ctx, "list users", func(ctx context.Context) error {
		var err error
		users, err = s.users.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

func (s *AccountService) checkCredentials(ctx context.Context, identifier, secret string) (*model.User, error) {
	user, err := s.getByStudentID(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account %d is deactivated: %w", user.ID, booking.ErrUnauthorized)
	}

	return user, nil
}

func (s *AccountService) getByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	var user *model.User
	err := s.store.call(ctx, "get user by student id", func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByStudentID(ctx, studentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
