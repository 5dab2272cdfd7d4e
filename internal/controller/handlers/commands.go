package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/link <логин> <пароль> - Привязать учётную запись\n" +
	"/book <ГГГГ-ММ-ДД> <комната> <08:00|13:00> - Забронировать слот\n" +
	"/mybookings - Мои брони\n" +
	"/cancel <id> - Отменить бронь\n" +
	"/calendar [ГГГГ-ММ] - Календарь месяца\n" +
	"/occupancy - Кто сейчас в лаборатории\n\n" +
	"Для администраторов:\n" +
	"/pending - Брони, ожидающие решения\n" +
	"/accept <id> - Подтвердить бронь\n" +
	"/decline <id> - Отклонить бронь\n" +
	"/delete <id> - Удалить бронь"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	name := update.Message.From.FirstName
	if name == "" {
		name = update.Message.From.Username
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для бронирования лабораторных комнат.\n"+
			"Слоты: утро 08:00-12:00 и день 13:00-17:00.\n\n"+
			"Для начала привяжите учётную запись: /link <логин> <пароль>\n\n%s",
		name, helpText,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText, nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleLink обрабатывает команду /link <логин> <пароль>.
// Сообщение с паролем удаляется из чата.
func (h *Handlers) HandleLink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: update.Message.ID}); err != nil {
		h.logger.Warn("Failed to delete link message", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.sendError(ctx, b, chatID, "❌ Использование: /link <логин> <пароль>")
		return
	}

	user, err := h.accountService.LinkTelegram(ctx, update.Message.From.ID, args[0], args[1])
	if err != nil {
		h.logger.Info("Telegram link rejected",
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.Error(err),
		)
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Аккаунт %s привязан. Список команд: /help", user.StudentID), nil)
}
