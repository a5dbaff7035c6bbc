package receiver

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/julianails/tg_booking_bot/pkg/booking/catalog"
	"github.com/julianails/tg_booking_bot/pkg/booking/report"
	"github.com/julianails/tg_booking_bot/pkg/repository/model"
)

var monthsRU = [...]string{
	"", "января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var weekdaysShortRU = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

func monthRU(m time.Month) string {
	name := monthsRU[int(m)]
	return strings.ToUpper(name[:2]) + name[2:]
}

// HumanDate renders "2025-06-10" as "10 июня 2025 (Вт)".
func HumanDate(iso string) string {
	t, err := time.Parse(model.DateLayout, iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d %s %d (%s)", t.Day(), monthsRU[int(t.Month())], t.Year(), weekdaysShortRU[t.Weekday()])
}

var phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)

// ValidPhone accepts international-looking numbers; spaces, dashes and
// parens are stripped before matching.
func ValidPhone(raw string) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(raw)
	return phoneRe.MatchString(cleaned)
}

// ---------- Texts ----------

func ConfirmText(b BookingData, svc catalog.ServiceType) string {
	return fmt.Sprintf(
		"<b>Проверьте запись:</b>\n\n"+
			"👤 %s, %s\n"+
			"💅 %s\n"+
			"📅 %s\n"+
			"🕐 %s\n"+
			"💰 %d₽\n\n"+
			"Всё верно?",
		b.FullName, b.Phone, svc.Name, HumanDate(b.Date), b.Time, svc.Price)
}

func BookedText(a model.Appointment) string {
	return fmt.Sprintf(
		"🎉 <b>Вы записаны!</b>\n\n"+
			"💅 %s\n📅 %s\n🕐 %s\n💰 %d₽\n\n"+
			"ID записи: #%d\nДля отмены откройте «Мои записи».",
		a.ServiceName, HumanDate(a.Date), a.Slot, a.Price, a.ID)
}

func MyListText(appointments []model.Appointment) string {
	if len(appointments) == 0 {
		return "У вас пока нет активных записей."
	}
	var sb strings.Builder
	sb.WriteString("<b>Ваши записи:</b>\n\n")
	for _, a := range appointments {
		fmt.Fprintf(&sb, "#%d — %s, %s %s, %d₽\n", a.ID, a.ServiceName, HumanDate(a.Date), a.Slot, a.Price)
	}
	sb.WriteString("\nНажмите на запись ниже, чтобы отменить её.")
	return sb.String()
}

func AdminListText(appointments []model.AppointmentWithClient) string {
	if len(appointments) == 0 {
		return "Активных записей нет."
	}
	var sb strings.Builder
	sb.WriteString("<b>Все активные записи:</b>\n\n")
	total := 0
	for _, a := range appointments {
		fmt.Fprintf(&sb, "#%d %s %s — %s\n👤 %s, %s\n\n",
			a.ID, HumanDate(a.Date), a.Slot, a.ServiceName, a.FullName, a.Phone)
		total += a.Price
	}
	fmt.Fprintf(&sb, "💵 <b>Общая сумма:</b> %d₽", total)
	return sb.String()
}

// ScheduleText renders the admin today/week views: chronological list
// with client contacts and the day's takings at the bottom.
func ScheduleText(title string, appointments []model.AppointmentWithClient) string {
	if len(appointments) == 0 {
		return fmt.Sprintf("%s\n\nЗаписей нет.", title)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n\n", title)
	total := 0
	for _, a := range appointments {
		fmt.Fprintf(&sb, "🕐 <b>%s %s</b> — %s\n👤 %s, %s\n\n",
			HumanDate(a.Date), a.Slot, a.ServiceName, a.FullName, a.Phone)
		total += a.Price
	}
	fmt.Fprintf(&sb, "💵 <b>Итого:</b> %d₽", total)
	return sb.String()
}

// AdminNewBookingText is the notification admins get about a fresh
// booking.
func AdminNewBookingText(a model.Appointment, fullName, phone string) string {
	return fmt.Sprintf(
		"🔔 <b>Новая запись #%d</b>\n\n"+
			"👤 %s, %s\n💅 %s\n📅 %s\n🕐 %s\n💰 %d₽",
		a.ID, fullName, phone, a.ServiceName, HumanDate(a.Date), a.Slot, a.Price)
}

// AdminCancelText is the notification admins get when a booking is
// cancelled.
func AdminCancelText(a model.Appointment, fullName, phone string) string {
	return fmt.Sprintf(
		"❌ <b>Отмена записи #%d</b>\n\n"+
			"👤 %s, %s\n💅 %s\n📅 %s в %s",
		a.ID, fullName, phone, a.ServiceName, HumanDate(a.Date), a.Slot)
}

func StatsText(s report.Summary, services []report.ServiceStat, days []report.WeekdayStat) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>СТАТИСТИКА</b>\n\n")
	fmt.Fprintf(&sb, "👥 Клиентов: %d\n", s.TotalClients)
	fmt.Fprintf(&sb, "📅 Активных записей: %d\n", s.ActiveAppointments)
	fmt.Fprintf(&sb, "🕐 Сегодня: %d\n", s.TodayAppointments)
	fmt.Fprintf(&sb, "🗓 На неделю: %d\n", s.WeekAppointments)
	fmt.Fprintf(&sb, "💰 Доход за месяц: %d₽\n", s.MonthRevenue)

	if len(services) > 0 {
		sb.WriteString("\n<b>По услугам:</b>\n")
		for _, st := range services {
			fmt.Fprintf(&sb, "• %s — %d зап., %d₽\n", st.ServiceKey, st.Count, st.Revenue)
		}
	}
	if len(days) > 0 {
		sb.WriteString("\n<b>Популярные дни:</b>\n")
		for _, d := range days {
			fmt.Fprintf(&sb, "• %s — %d\n", d.Weekday, d.Count)
		}
	}
	return sb.String()
}
