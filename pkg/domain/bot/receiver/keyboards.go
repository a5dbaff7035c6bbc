package receiver

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/julianails/tg_booking_bot/pkg/booking/catalog"
	"github.com/julianails/tg_booking_bot/pkg/booking/schedule"
	"github.com/julianails/tg_booking_bot/pkg/repository/model"
)

// ---------- UI builders ----------

func StartMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("НАЧАТЬ", CbStart)),
	)
}

func MainMenu(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💅 Записаться", CbBook)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Мои записи", CbMy)),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 Панель управления", CbAdmin)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ServiceMenu(services []catalog.ServiceType) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range services {
		label := fmt.Sprintf("%s • %d мин • %d₽", s.Name, s.DurationMin, s.Price)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, PSvc+s.Key)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", CbBack)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CalendarMenu renders a month: header, weekday row, day grid with
// past days shown as dots, plus prev/next month paging.
func CalendarMenu(view schedule.MonthView) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	header := fmt.Sprintf("📅 %s %d", monthRU(view.Month), view.Year)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(header, CbIgnore)))

	weekdays := []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
	wdRow := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, wd := range weekdays {
		wdRow = append(wdRow, tgbotapi.NewInlineKeyboardButtonData(wd, CbIgnore))
	}
	rows = append(rows, wdRow)

	week := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for i := 0; i < view.Offset; i++ {
		week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", CbIgnore))
	}
	for _, d := range view.Days {
		if d.Eligible {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(d.Day), PD+d.Date))
		} else {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData("·", CbIgnore))
		}
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]tgbotapi.InlineKeyboardButton, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, tgbotapi.NewInlineKeyboardButtonData(" ", CbIgnore))
		}
		rows = append(rows, week)
	}

	prev := view.Month - 1
	prevYear := view.Year
	if prev < 1 {
		prev = 12
		prevYear--
	}
	next := view.Month + 1
	nextYear := view.Year
	if next > 12 {
		next = 1
		nextYear++
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("«", fmt.Sprintf("%s%d-%02d", PCal, prevYear, prev)),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", CbBack),
		tgbotapi.NewInlineKeyboardButtonData("»", fmt.Sprintf("%s%d-%02d", PCal, nextYear, next)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func TimeMenu(free []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := make([]tgbotapi.InlineKeyboardButton, 0, 4)
	for _, t := range free {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(t, PT+t))
		if len(row) == 4 {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, 4)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", CbBack)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ConfirmMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", CbOk)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", CbBack)),
	)
}

// MyMenu lists the user's pending appointments with a cancel button
// per row.
func MyMenu(appointments []model.Appointment) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range appointments {
		label := fmt.Sprintf("❌ %s %s — %s", HumanDate(a.Date), a.Slot, a.ServiceName)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, PCancel+strconv.FormatInt(a.ID, 10))))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", CbBack)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func AdminMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Все записи", CbAdminList)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Сегодня", CbAdminToday),
			tgbotapi.NewInlineKeyboardButtonData("🗓 Неделя", CbAdminWeek),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", CbAdminStats)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", CbBack)),
	)
}

func BackMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", CbBack)),
	)
}
