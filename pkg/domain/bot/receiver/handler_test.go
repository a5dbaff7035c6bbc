package receiver

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianails/tg_booking_bot/pkg/repository/model"
)

type recordingNotifier struct {
	sent   []int64
	texts  []string
	failOn int64
}

func (n *recordingNotifier) Send(chatID int64, text string) (int, error) {
	if chatID == n.failOn {
		return 0, errors.New("blocked by user")
	}
	n.sent = append(n.sent, chatID)
	n.texts = append(n.texts, text)
	return 1, nil
}

func TestNotifyAdmins_FanOut(t *testing.T) {
	n := &recordingNotifier{}
	h := &Handler{notifier: n, adminIDs: []int64{10, 20, 30}, logger: zerolog.Nop()}

	h.notifyAdmins("🔔 test")

	assert.Equal(t, []int64{10, 20, 30}, n.sent)
	assert.Equal(t, "🔔 test", n.texts[0])
}

func TestNotifyAdmins_ContinuesPastFailure(t *testing.T) {
	n := &recordingNotifier{failOn: 20}
	h := &Handler{notifier: n, adminIDs: []int64{10, 20, 30}, logger: zerolog.Nop()}

	h.notifyAdmins("🔔 test")

	// Один недоступный админ не лишает уведомления остальных.
	assert.Equal(t, []int64{10, 30}, n.sent)
}

func TestNotifyAdmins_NilNotifier(t *testing.T) {
	h := &Handler{adminIDs: []int64{10}, logger: zerolog.Nop()}
	assert.NotPanics(t, func() { h.notifyAdmins("🔔 test") })
}

func TestAdminMenu_HasScheduleViews(t *testing.T) {
	markup := AdminMenu()

	var keys []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			keys = append(keys, *btn.CallbackData)
		}
	}
	assert.Contains(t, keys, CbAdminList)
	assert.Contains(t, keys, CbAdminToday)
	assert.Contains(t, keys, CbAdminWeek)
	assert.Contains(t, keys, CbAdminStats)
}

func TestScheduleText(t *testing.T) {
	assert.Contains(t, ScheduleText("📅 Записи на сегодня", nil), "Записей нет")

	list := []model.AppointmentWithClient{
		{
			Appointment: model.Appointment{ID: 1, ServiceName: "Гель-лак", Date: "2025-06-10", Slot: "09:00", Price: 2500},
			FullName:    "Анна",
			Phone:       "+79001112233",
		},
		{
			Appointment: model.Appointment{ID: 2, ServiceName: "Классический маникюр", Date: "2025-06-10", Slot: "12:00", Price: 1500},
			FullName:    "Мария",
			Phone:       "+79004445566",
		},
	}
	text := ScheduleText("📅 Записи на сегодня", list)
	assert.Contains(t, text, "Гель-лак")
	assert.Contains(t, text, "Анна, +79001112233")
	assert.Contains(t, text, "Мария")
	assert.Contains(t, text, "Итого:</b> 4000₽")
}

func TestAdminNotificationTexts(t *testing.T) {
	a := model.Appointment{ID: 42, ServiceName: "Гель-лак", Date: "2025-06-10", Slot: "10:30", Price: 2500}

	booked := AdminNewBookingText(a, "Анна", "+79001112233")
	assert.Contains(t, booked, "Новая запись #42")
	assert.Contains(t, booked, "Анна, +79001112233")
	assert.Contains(t, booked, "10 июня 2025")
	assert.Contains(t, booked, "2500₽")

	cancelled := AdminCancelText(a, "Анна", "+79001112233")
	assert.Contains(t, cancelled, "Отмена записи #42")
	assert.Contains(t, cancelled, "в 10:30")
}
