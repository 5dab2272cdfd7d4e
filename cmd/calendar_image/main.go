package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/lab_scheduler/internal/booking"
	"github.com/Freeeeeet/lab_scheduler/internal/controller/render"
	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// Рисует календарь текущего месяца с тестовыми бронями, чтобы проверить вёрстку без бота
func main() {
	policyFlag := flag.String("policy", string(model.PolicyOwnership), "aggregate или ownership")
	output := flag.String("o", "calendar.png", "куда сохранить PNG")
	flag.Parse()

	policy := model.CalendarPolicy(*policyFlag)
	today := booking.DateOf(time.Now())
	month, year := today.Month(), today.Year()
	first, _ := booking.MonthRange(month, year)

	const viewerID = 1
	reservations := []*model.Reservation{
		sample(1, viewerID, first.AddDate(0, 0, 2), model.SlotMorning, model.ReservationStatusAccepted),
		sample(2, 2, first.AddDate(0, 0, 2), model.SlotAfternoon, model.ReservationStatusPending),
		sample(3, 2, first.AddDate(0, 0, 5), model.SlotMorning, model.ReservationStatusAccepted),
		sample(4, viewerID, first.AddDate(0, 0, 9), model.SlotAfternoon, model.ReservationStatusPending),
		sample(5, 3, first.AddDate(0, 0, 12), model.SlotMorning, model.ReservationStatusAccepted),
		sample(6, 3, first.AddDate(0, 0, 12), model.SlotAfternoon, model.ReservationStatusAccepted),
		sample(7, viewerID, first.AddDate(0, 0, 15), model.SlotMorning, model.ReservationStatusCancelled),
	}

	days, err := booking.Project(month, year, reservations, viewerID, policy)
	if err != nil {
		fmt.Printf("Ошибка построения календаря: %v\n", err)
		os.Exit(1)
	}

	imageData, err := render.MonthImage(month, year, days, policy, today)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", *output)
	fmt.Printf("📅 Месяц: %02d.%d, политика: %s\n", int(month), year, policy)
	fmt.Printf("📊 Броней: %d\n", len(reservations))
}

func sample(id, userID int64, date time.Time, slot model.Slot, status model.ReservationStatus) *model.Reservation {
	r := &model.Reservation{ID: id, UserID: userID, Date: date, Room: 1, Status: status}
	_ = booking.ApplySlot(r, slot)
	return r
}
