package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// activeActor перечитывает роль и активность из каталога учётных записей.
// Роль из токена не используется, неизвестный или отключённый аккаунт получает ErrUnauthorized.
func activeActor(ctx context.Context, store storeCaller, accounts AccountDirectory, actor model.Actor) (model.Actor, error) {
	var account *model.User
	err := store.call(ctx, "get account", func(ctx context.Context) error {
		var err error
		account, err = accounts.GetAccountByID(ctx, actor.ID)
		return err
	})
	if err != nil {
		return model.Actor{}, fmt.Errorf("get account: %w", err)
	}

	if account == nil || !account.IsActive {
		return model.Actor{}, fmt.Errorf("account %d is unknown or inactive: %w", actor.ID, booking.ErrUnauthorized)
	}

	return model.ActorOf(account), nil
}
