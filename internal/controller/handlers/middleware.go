package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

// requireActor находит учётную запись, привязанную к Telegram-аккаунту.
// Возвращает actor и true если OK, иначе отправляет пояснение и возвращает false.
func (h *Handlers) requireActor(ctx context.Context, b *bot.Bot, update *models.Update) (model.Actor, bool) {
	if update.Message == nil || update.Message.From == nil {
		return model.Actor{}, false
	}

	telegramID := update.Message.From.ID
	actor, err := h.accountService.ActorByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			h.sendError(ctx, b, update.Message.Chat.ID, "❌ Аккаунт не привязан. Используйте /link <логин> <пароль>.")
			return model.Actor{}, false
		}
		h.logger.Warn("Failed to resolve telegram account", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, errorMessage(err))
		return model.Actor{}, false
	}

	return actor, true
}

// requireAdmin проверяет что пользователь является администратором
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (model.Actor, bool) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return model.Actor{}, false
	}

	if !actor.IsAdmin() {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Эта команда доступна только администраторам.")
		return model.Actor{}, false
	}

	return actor, true
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.SendMessage(ctx, params)
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
