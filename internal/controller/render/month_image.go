package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// Константы размеров и отступов
const (
	imageWidth    = 980
	headerHeight  = 90
	weekdayHeight = 40
	cellHeight    = 110
	legendHeight  = 60
	cellPadding   = 4.0
	cellRadius    = 8.0
	daysInWeek    = 7
)

// Константы шрифтов
const (
	titleFontSize   = 30.0
	weekdayFontSize = 18.0
	dayFontSize     = 22.0
	slotFontSize    = 13.0
	legendFontSize  = 14.0
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 230}
	paddingColor   = color.RGBA{232, 233, 236, 255}
	todayBorder    = color.RGBA{255, 99, 71, 255}
	freeColor      = color.RGBA{133, 193, 85, 220}
	reservedColor  = color.RGBA{255, 182, 193, 255}
	otherColor     = color.RGBA{158, 158, 158, 200}
	slotTextColor  = color.RGBA{20, 24, 28, 230}
	reservedText   = color.RGBA{120, 40, 50, 255}
	legendItemText = color.RGBA{70, 74, 78, 220}
)

type fontFaces struct {
	regular *opentype.Font
	bold    *opentype.Font
}

var loadFonts = sync.OnceValues(func() (fontFaces, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fontFaces{}, err
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return fontFaces{}, err
	}
	return fontFaces{regular: regular, bold: bold}, nil
})

// setFont выставляет шрифт нужного размера, при ошибке откатывается на basicfont
func setFont(dc *gg.Context, size float64, bold bool) {
	faces, err := loadFonts()
	if err == nil {
		f := faces.regular
		if bold {
			f = faces.bold
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// MonthImage рисует сетку месяца в PNG. days - результат booking.Project,
// ячейки идут с понедельника и их количество кратно семи.
// today подсвечивается рамкой, если попадает в месяц.
func MonthImage(month time.Month, year int, days []model.CalendarDay, policy model.CalendarPolicy, today time.Time) ([]byte, error) {
	if len(days) == 0 || len(days)%daysInWeek != 0 {
		return nil, fmt.Errorf("calendar grid has %d cells, want a positive multiple of %d", len(days), daysInWeek)
	}
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d out of range", month)
	}

	rows := len(days) / daysInWeek
	height := headerHeight + weekdayHeight + rows*cellHeight + legendHeight

	dc := gg.NewContext(imageWidth, height)
	dc.SetColor(bgColor)
	dc.Clear()

	drawTitle(dc, month, year)
	drawWeekdays(dc)

	todayKey := today.Format(model.DateLayout)
	cellWidth := float64(imageWidth) / daysInWeek
	for i, day := range days {
		x := float64(i%daysInWeek) * cellWidth
		y := float64(headerHeight+weekdayHeight) + float64(i/daysInWeek)*cellHeight
		drawDay(dc, day, x, y, cellWidth, day.Date != nil && day.Date.Format(model.DateLayout) == todayKey)
	}

	drawLegend(dc, policy, float64(height-legendHeight))

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTitle(dc *gg.Context, month time.Month, year int) {
	setFont(dc, titleFontSize, true)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(monthName(month)+" "+strconv.Itoa(year), float64(imageWidth)/2, float64(headerHeight)/2, 0.5, 0.5)
}

func drawWeekdays(dc *gg.Context) {
	setFont(dc, weekdayFontSize, true)
	dc.SetColor(textColor)
	cellWidth := float64(imageWidth) / daysInWeek
	for i, name := range weekdayNames {
		dc.DrawStringAnchored(name, float64(i)*cellWidth+cellWidth/2, float64(headerHeight)+float64(weekdayHeight)/2, 0.5, 0.5)
	}
}

// drawDay рисует ячейку: верхняя половина - утро, нижняя - день
func drawDay(dc *gg.Context, day model.CalendarDay, x, y, w float64, isToday bool) {
	innerX := x + cellPadding
	innerY := y + cellPadding
	innerW := w - 2*cellPadding
	innerH := float64(cellHeight) - 2*cellPadding

	if day.IsPadding() {
		dc.SetColor(paddingColor)
		dc.DrawRoundedRectangle(innerX, innerY, innerW, innerH, cellRadius)
		dc.Fill()
		return
	}

	morning, afternoon := halfColors(day.Status)

	dc.SetColor(morning)
	dc.DrawRectangle(innerX, innerY, innerW, innerH/2)
	dc.Fill()
	dc.SetColor(afternoon)
	dc.DrawRectangle(innerX, innerY+innerH/2, innerW, innerH/2)
	dc.Fill()

	if isToday {
		dc.SetColor(todayBorder)
		dc.SetLineWidth(3)
	} else {
		dc.SetColor(darken(morning, 0.8))
		dc.SetLineWidth(1)
	}
	dc.DrawRectangle(innerX, innerY, innerW, innerH)
	dc.Stroke()

	setFont(dc, dayFontSize, true)
	dc.SetColor(slotTextColor)
	dc.DrawStringAnchored(strconv.Itoa(day.Date.Day()), innerX+8, innerY+8, 0, 1)

	setFont(dc, slotFontSize, false)
	dc.SetColor(halfTextColor(morning))
	dc.DrawStringAnchored("08-12", innerX+innerW-6, innerY+innerH/4, 1, 0.5)
	dc.SetColor(halfTextColor(afternoon))
	dc.DrawStringAnchored("13-17", innerX+innerW-6, innerY+3*innerH/4, 1, 0.5)
}

// halfColors возвращает цвета утренней и дневной половины ячейки
func halfColors(status model.DayStatus) (color.RGBA, color.RGBA) {
	switch status {
	case model.DayMorning:
		return reservedColor, freeColor
	case model.DayAfternoon:
		return freeColor, reservedColor
	case model.DayReserved:
		return reservedColor, reservedColor
	case model.DayOtherReserved:
		return otherColor, otherColor
	default:
		return freeColor, freeColor
	}
}

func halfTextColor(fill color.RGBA) color.RGBA {
	if fill == reservedColor {
		return reservedText
	}
	return slotTextColor
}

func drawLegend(dc *gg.Context, policy model.CalendarPolicy, top float64) {
	items := []struct {
		label string
		clr   color.RGBA
	}{
		{"Свободно", freeColor},
		{"Занято", reservedColor},
	}
	if policy == model.PolicyOwnership {
		items[1].label = "Моя бронь"
		items = append(items, struct {
			label string
			clr   color.RGBA
		}{"Занято другими", otherColor})
	}

	setFont(dc, legendFontSize, false)
	x := 20.0
	y := top + float64(legendHeight)/2 - 7
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, 20, 14, 3)
		dc.Fill()

		dc.SetColor(legendItemText)
		dc.DrawStringAnchored(item.label, x+28, y+7, 0, 0.35)
		w, _ := dc.MeasureString(item.label)
		x += 28 + w + 30
	}
}

// darken затемняет цвет на указанный множитель
func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

var weekdayNames = [daysInWeek]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

func monthName(m time.Month) string {
	return monthNames[m-1]
}
