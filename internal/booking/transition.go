package booking

import "github.com/Freeeeeet/lab_scheduler/internal/model"

// Разрешённые переходы статуса одобрения.
// declined и cancelled конечные.
var transitions = map[model.ReservationStatus][]model.ReservationStatus{
	model.ReservationStatusPending: {
		model.ReservationStatusAccepted,
		model.ReservationStatusDeclined,
		model.ReservationStatusCancelled,
	},
	model.ReservationStatusAccepted: {
		model.ReservationStatusCancelled,
	},
}

// CanTransition проверяет допустим ли переход
func CanTransition(from, to model.ReservationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition применяет переход. Недопустимый переход не ошибка: возвращается
// текущий статус и changed=false, вызывающий код трактует это как идемпотентный no-op.
func Transition(current, target model.ReservationStatus) (next model.ReservationStatus, changed bool) {
	if !CanTransition(current, target) {
		return current, false
	}
	return target, true
}

// RequiresAdmin проверяет, что статус выставляет только администратор
func RequiresAdmin(target model.ReservationStatus) bool {
	return target == model.ReservationStatusAccepted || target == model.ReservationStatusDeclined
}

// CanActorTransition проверяет право на переход. Владение проверяется по userID
// брони; администратор может всё, включая отмену чужой брони.
func CanActorTransition(actor model.Actor, r *model.Reservation, target model.ReservationStatus) bool {
	if actor.IsAdmin() {
		return true
	}
	if RequiresAdmin(target) {
		return false
	}
	return target == model.ReservationStatusCancelled && r.UserID == actor.ID
}
