package handlers

// Префиксы callback data для inline кнопок
const (
	CallbackAccept  = "accept:"  // accept:123
	CallbackDecline = "decline:" // decline:123
	CallbackCancel  = "cancel:"  // cancel:123
)

// Размер страницы в списках бота
const (
	MyBookingsPageSize = 10
	PendingPageSize    = 5
)
