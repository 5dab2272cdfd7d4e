package handlers

import (
	"errors"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/service"
)

// errorMessage переводит ошибку сервиса в текст для пользователя
func errorMessage(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return "❌ Неверные аргументы команды. Справка: /help"
	case errors.Is(err, booking.ErrPastDate):
		return "❌ Нельзя бронировать прошедшие даты."
	case errors.Is(err, booking.ErrInvalidDate):
		return "❌ Неверная дата. Формат: ГГГГ-ММ-ДД."
	case errors.Is(err, booking.ErrInvalidSlot):
		return "❌ Время начала должно быть 08:00 (утро) или 13:00 (день)."
	case errors.Is(err, booking.ErrInvalidRoom):
		return "❌ Такой комнаты нет."
	case errors.Is(err, booking.ErrSlotTaken):
		return "❌ Этот слот уже занят."
	case errors.Is(err, booking.ErrRoomClosed):
		return "❌ Комната закрыта для записи в это время."
	case errors.Is(err, booking.ErrNotFound):
		return "❌ Бронь не найдена."
	case errors.Is(err, service.ErrInvalidCredentials):
		return "❌ Неверный логин или пароль."
	case errors.Is(err, service.ErrAccountNotFound):
		return "❌ Учётная запись не найдена."
	case errors.Is(err, booking.ErrUnauthorized):
		return "❌ Недостаточно прав для этого действия."
	case errors.Is(err, booking.ErrStoreUnavailable):
		return "⚠️ Сервис временно недоступен. Попробуйте позже."
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
