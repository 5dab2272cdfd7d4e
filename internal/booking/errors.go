package booking

import "errors"

// Ошибки движка бронирования. Проверяются через errors.Is, один вид ошибки
// никогда не подменяется другим.
var (
	// Валидация, возвращаются до любого обращения к хранилищу
	ErrPastDate      = errors.New("date is in the past")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidSlot   = errors.New("start time does not match a slot")
	ErrInvalidRoom   = errors.New("unknown room")
	ErrInvalidPolicy = errors.New("unknown calendar policy")
	ErrInvalidStatus = errors.New("unknown reservation status")

	ErrSlotTaken        = errors.New("slot already taken")
	ErrRoomClosed       = errors.New("room is not open for booking")
	ErrNotFound         = errors.New("reservation not found")
	ErrUnauthorized     = errors.New("not allowed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsValidation проверяет что ошибка относится к локальной валидации запроса
func IsValidation(err error) bool {
	return errors.Is(err, ErrPastDate) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidSlot) ||
		errors.Is(err, ErrInvalidRoom) ||
		errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsRetryable разрешает повтор только при временной недоступности хранилища
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
