package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// HandlePending обрабатывает команду /pending: заявки с кнопками решения
func (h *Handlers) HandlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	status := model.ReservationStatusPending
	today := h.reservationService.Today()
	page, err := h.reservationService.ListReservations(ctx, actor, model.ReservationFilter{
		Status:  &status,
		From:    &today,
		OrderBy: model.OrderByDate,
	}, model.Page{Number: 1, Size: PendingPageSize})
	if err != nil {
		h.logger.Error("Failed to list pending reservations", zap.Error(err))
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	if len(page.Items) == 0 {
		h.sendMessage(ctx, b, chatID, "✨ Нет заявок, ожидающих решения.", nil)
		return
	}

	for _, r := range page.Items {
		h.sendMessage(ctx, b, chatID, formatReservation(r), decisionKeyboard(r.ID))
	}
	if page.HasNext {
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("Показаны первые %d заявок. Обработайте их и вызовите /pending ещё раз.", PendingPageSize), nil)
	}
}

// HandleAccept обрабатывает команду /accept <id>
func (h *Handlers) HandleAccept(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleDecision(ctx, b, update, h.reservationService.AcceptReservation)
}

// HandleDecline обрабатывает команду /decline <id>
func (h *Handlers) HandleDecline(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleDecision(ctx, b, update, h.reservationService.DeclineReservation)
}

type decisionFunc func(ctx context.Context, actor model.Actor, id int64) (*model.Reservation, error)

func (h *Handlers) handleDecision(ctx context.Context, b *bot.Bot, update *models.Update, decide decisionFunc) {
	actor, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	id, err := parseIDArg(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	reservation, err := decide(ctx, actor, id)
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, formatReservation(reservation), nil)
}

// HandleDelete обрабатывает команду /delete <id>
func (h *Handlers) HandleDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	id, err := parseIDArg(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	if err := h.reservationService.DeleteReservation(ctx, actor, id); err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🗑 Бронь #%d удалена.", id), nil)
}

// HandleCallbackQuery обрабатывает нажатия inline кнопок accept/decline/cancel
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	h.logger.Info("Routing callback",
		zap.String("data", callback.Data),
		zap.Int64("telegram_id", callback.From.ID),
	)

	var (
		decide decisionFunc
		prefix string
	)
	switch {
	case strings.HasPrefix(callback.Data, CallbackAccept):
		decide, prefix = h.reservationService.AcceptReservation, CallbackAccept
	case strings.HasPrefix(callback.Data, CallbackDecline):
		decide, prefix = h.reservationService.DeclineReservation, CallbackDecline
	case strings.HasPrefix(callback.Data, CallbackCancel):
		decide, prefix = h.reservationService.CancelReservation, CallbackCancel
	default:
		h.logger.Warn("Unknown callback", zap.String("data", callback.Data))
		h.answerCallback(ctx, b, callback.ID, "Неизвестное действие", true)
		return
	}

	id, err := parseCallbackID(callback.Data, prefix)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, "Неверные данные кнопки", true)
		return
	}

	actor, err := h.accountService.ActorByTelegramID(ctx, callback.From.ID)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, errorMessage(err), true)
		return
	}

	reservation, err := decide(ctx, actor, id)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, errorMessage(err), true)
		return
	}

	h.answerCallback(ctx, b, callback.ID, "Готово", false)

	if msg := callback.Message.Message; msg != nil {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      formatReservation(reservation),
		})
		if err != nil {
			h.logger.Warn("Failed to update decision message", zap.Error(err))
		}
	}
}

func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.String("callback_id", callbackID), zap.Error(err))
	}
}
