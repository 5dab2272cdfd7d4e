package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lab_scheduler/internal/controller/render"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// HandleBook обрабатывает команду /book <дата> <комната> <время начала>
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	date, room, startTime, err := parseBookArgs(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err)+"\n\nПример: /book 2025-03-10 1 08:00")
		return
	}

	reservation, err := h.reservationService.RequestBooking(ctx, actor, date, room, startTime)
	if err != nil {
		h.logger.Info("Booking rejected",
			zap.Int64("user_id", actor.ID),
			zap.Error(err),
		)
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, "📝 Заявка создана и ожидает подтверждения.\n\n"+formatReservation(reservation), cancelKeyboard(reservation.ID))
}

// HandleMyBookings обрабатывает команду /mybookings
func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	today := h.reservationService.Today()
	page, err := h.reservationService.ListReservations(ctx, actor, model.ReservationFilter{
		UserID:     &actor.ID,
		From:       &today,
		OnlyActive: true,
		OrderBy:    model.OrderByDate,
	}, model.Page{Number: 1, Size: MyBookingsPageSize})
	if err != nil {
		h.logger.Error("Failed to list bookings", zap.Int64("user_id", actor.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	if len(page.Items) == 0 {
		h.sendMessage(ctx, b, chatID, "📅 У вас нет предстоящих броней.\n\nЗабронировать: /book", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Ваши предстоящие брони:\n\n")
	for _, r := range page.Items {
		sb.WriteString(formatReservation(r))
		sb.WriteString("\n\n")
	}
	if page.HasNext {
		fmt.Fprintf(&sb, "Показаны первые %d.\n", MyBookingsPageSize)
	}
	sb.WriteString("Отменить: /cancel <id>")

	h.sendMessage(ctx, b, chatID, sb.String(), nil)
}

// HandleCancel обрабатывает команду /cancel <id>
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	id, err := parseIDArg(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	reservation, err := h.reservationService.CancelReservation(ctx, actor, id)
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, formatReservation(reservation), nil)
}

// HandleCalendar обрабатывает команду /calendar [ГГГГ-ММ] и присылает картинку месяца
func (h *Handlers) HandleCalendar(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	today := h.reservationService.Today()
	month, year, err := parseMonthArg(commandArgs(update.Message.Text), today)
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	policy := model.PolicyOwnership
	if actor.IsAdmin() {
		policy = model.PolicyAggregate
	}

	days, err := h.reservationService.GetCalendar(ctx, actor, month, year, policy)
	if err != nil {
		h.logger.Error("Failed to build calendar", zap.Int64("user_id", actor.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	imageData, err := render.MonthImage(month, year, days, policy, today)
	if err != nil {
		h.logger.Error("Failed to render calendar", zap.Error(err))
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "calendar.png", Data: bytes.NewReader(imageData)},
		Caption: fmt.Sprintf("🗓 Календарь %02d.%d", int(month), year),
	})
	if err != nil {
		h.logger.Error("Failed to send calendar", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleOccupancy обрабатывает команду /occupancy
func (h *Handlers) HandleOccupancy(ctx context.Context, b *bot.Bot, update *models.Update) {
	actor, ok := h.requireActor(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	now := h.now().In(h.location)
	rooms, err := h.occupancyService.Current(ctx, actor, now)
	if err != nil {
		h.sendError(ctx, b, chatID, errorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, formatOccupancy(rooms, now), nil)
}
