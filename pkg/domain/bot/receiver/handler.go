package receiver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/julianails/tg_booking_bot/pkg/booking/catalog"
	"github.com/julianails/tg_booking_bot/pkg/booking/ledger"
	"github.com/julianails/tg_booking_bot/pkg/booking/report"
	"github.com/julianails/tg_booking_bot/pkg/booking/schedule"
	"github.com/julianails/tg_booking_bot/pkg/repository/model"
	"github.com/rs/zerolog"
)

// Notifier delivers out-of-band messages: admin alerts about new and
// cancelled bookings go through it rather than the chat edit flow.
type Notifier interface {
	Send(chatID int64, text string) (int, error)
}

// Handler drives the per-user booking dialogue: it walks the FSM,
// calls into the engine and edits the chat message in place.
type Handler struct {
	bot      *tgbotapi.BotAPI
	sessions *SessionStore
	store    model.Store
	ledger   *ledger.Ledger
	catalog  *catalog.Catalog
	grid     *schedule.Grid
	reporter *report.Reporter
	notifier Notifier
	adminIDs []int64
	isAdmin  func(int64) bool
	logger   zerolog.Logger
	now      func() time.Time
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	store model.Store,
	ldg *ledger.Ledger,
	cat *catalog.Catalog,
	grid *schedule.Grid,
	reporter *report.Reporter,
	notifier Notifier,
	adminIDs []int64,
	isAdmin func(int64) bool,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		bot:      bot,
		sessions: NewSessionStore(),
		store:    store,
		ledger:   ldg,
		catalog:  cat,
		grid:     grid,
		reporter: reporter,
		notifier: notifier,
		adminIDs: adminIDs,
		isAdmin:  isAdmin,
		logger:   logger.With().Str("component", "receiver").Logger(),
		now:      time.Now,
	}
}

// HandleMessage processes plain text: the /start command and the
// name/phone steps of the booking flow. Any other text is deleted and
// the user is nudged back to the buttons.
func (h *Handler) HandleMessage(ctx context.Context, m *tgbotapi.Message) {
	userID := m.From.ID
	sess := h.sessions.Get(userID)

	if m.IsCommand() && m.Command() == "start" {
		sess.ResetFlow()
		greeting := fmt.Sprintf(
			"<b>Приветствую, %s!</b>\n\n"+
				"Этот бот поможет записаться на маникюр: выберите услугу, дату и время.",
			m.From.FirstName)
		msg := tgbotapi.NewMessage(m.Chat.ID, greeting)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = MainMenu(h.isAdmin(userID))
		if _, err := h.bot.Send(msg); err != nil {
			h.logger.Warn().Err(err).Msg("send start menu")
		}
		return
	}

	switch sess.State {
	case StateName:
		name := strings.TrimSpace(m.Text)
		if name == "" {
			h.reply(m.Chat.ID, "Пожалуйста, введите имя текстом.")
			return
		}
		sess.Booking.FullName = name
		sess.Go(StatePhone)
		h.reply(m.Chat.ID, "📱 Введите ваш номер телефона:")

	case StatePhone:
		if !ValidPhone(m.Text) {
			h.reply(m.Chat.ID, "Номер не похож на телефон. Пример: +79001234567")
			return
		}
		sess.Booking.Phone = strings.TrimSpace(m.Text)

		_, err := h.store.UpsertClient(ctx, model.Client{
			UserID:   userID,
			Username: m.From.UserName,
			FullName: sess.Booking.FullName,
			Phone:    sess.Booking.Phone,
		})
		if err != nil {
			h.logger.Error().Err(err).Int64("user_id", userID).Msg("upsert client")
			h.reply(m.Chat.ID, "Что-то пошло не так, попробуйте ещё раз.")
			return
		}

		sess.Go(StateService)
		msg := tgbotapi.NewMessage(m.Chat.ID, "💅 Выберите услугу:")
		msg.ReplyMarkup = ServiceMenu(h.catalog.List())
		if _, err := h.bot.Send(msg); err != nil {
			h.logger.Warn().Err(err).Msg("send service menu")
		}

	default:
		// Произвольный текст вне шагов ввода — убираем.
		_, _ = h.bot.Request(tgbotapi.NewDeleteMessage(m.Chat.ID, m.MessageID))
		h.reply(m.Chat.ID, "Пожалуйста, используйте кнопки 👆")
	}
}

// HandleCallback processes inline-button presses.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	userID := cq.From.ID
	sess := h.sessions.Get(userID)
	data := cq.Data
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	now := h.now()

	defer func() {
		_, _ = h.bot.Request(tgbotapi.NewCallback(cq.ID, ""))
	}()

	switch {
	case data == CbIgnore:
		return

	case data == CbStart:
		sess.Go(StateMain)

	case data == CbBack:
		sess.Back()

	case data == CbBook:
		sess.Booking = BookingData{}
		sess.Go(StateName)

	case data == CbMy:
		sess.Go(StateMy)

	case data == CbAdmin:
		if !h.isAdmin(userID) {
			return
		}
		sess.Go(StateAdmin)

	case data == CbAdminList:
		if !h.isAdmin(userID) {
			return
		}
		all, err := h.ledger.ListAll(ctx, model.StatusPending)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		h.edit(chatID, messageID, AdminListText(all), AdminMenu())
		return

	case data == CbAdminToday:
		if !h.isAdmin(userID) {
			return
		}
		list, err := h.reporter.TodaySchedule(ctx, now)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		h.edit(chatID, messageID, ScheduleText("📅 Записи на сегодня", list), AdminMenu())
		return

	case data == CbAdminWeek:
		if !h.isAdmin(userID) {
			return
		}
		list, err := h.reporter.WeekSchedule(ctx, now)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		h.edit(chatID, messageID, ScheduleText("🗓 Записи на неделю", list), AdminMenu())
		return

	case data == CbAdminStats:
		if !h.isAdmin(userID) {
			return
		}
		summary, err := h.reporter.Summary(ctx, now)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		services, err := h.reporter.ServiceBreakdown(ctx, now)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		days, err := h.reporter.TopWeekdays(ctx, 3)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		h.edit(chatID, messageID, StatsText(summary, services, days), AdminMenu())
		return

	case strings.HasPrefix(data, PSvc):
		key, _ := Is(data, PSvc)
		if _, err := h.catalog.Get(key); err != nil {
			return
		}
		sess.Booking.ServiceKey = key
		sess.CalYear, sess.CalMonth = now.Year(), now.Month()
		sess.Go(StateDate)

	case strings.HasPrefix(data, PCal):
		val, _ := Is(data, PCal)
		t, err := time.Parse("2006-01", val)
		if err != nil {
			return
		}
		sess.CalYear, sess.CalMonth = t.Year(), t.Month()

	case strings.HasPrefix(data, PD):
		date, _ := Is(data, PD)
		if !h.grid.DateEligible(date, now) {
			return
		}
		sess.Booking.Date = date
		sess.Go(StateTime)

	case strings.HasPrefix(data, PT):
		slot, _ := Is(data, PT)
		if !h.grid.ValidSlot(slot) {
			return
		}
		sess.Booking.Time = slot
		sess.Go(StateConfirm)

	case data == CbOk:
		h.confirmBooking(ctx, sess, cq, now)
		return

	case strings.HasPrefix(data, PCancel):
		val, _ := Is(data, PCancel)
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return
		}
		prev, prevErr := h.ledger.Get(ctx, id)
		cancelled, err := h.ledger.Cancel(ctx, id, userID, h.isAdmin(userID), now)
		if err != nil && !errors.Is(err, ledger.ErrNotFound) && !errors.Is(err, ledger.ErrNotOwner) {
			h.editError(chatID, messageID)
			return
		}
		// Уведомляем только на реальном переходе pending → cancelled,
		// повторное нажатие тишины не нарушает.
		if err == nil && prevErr == nil && prev.Status == model.StatusPending {
			client, cErr := h.store.GetClient(ctx, cancelled.UserID)
			if cErr != nil {
				h.logger.Warn().Err(cErr).Int64("user_id", cancelled.UserID).Msg("client lookup for admin notice")
			}
			go h.notifyAdmins(AdminCancelText(cancelled, client.FullName, client.Phone))
		}
		// Перерисовываем список записей.
	}

	h.renderState(ctx, sess, userID, chatID, messageID, now)
}

// confirmBooking commits the accumulated dialogue through the ledger.
// A lost slot race re-shows the (now fresh) slot list.
func (h *Handler) confirmBooking(ctx context.Context, sess *Session, cq *tgbotapi.CallbackQuery, now time.Time) {
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	b := sess.Booking

	a, err := h.ledger.Book(ctx, userID, b.ServiceKey, b.Date, b.Time, now)
	switch {
	case err == nil:
		go h.notifyAdmins(AdminNewBookingText(a, b.FullName, b.Phone))
		sess.ResetFlow()
		h.edit(chatID, messageID, BookedText(a), MainMenu(h.isAdmin(userID)))

	case errors.Is(err, ledger.ErrSlotTaken):
		_, _ = h.bot.Request(tgbotapi.NewCallbackWithAlert(cq.ID, "Время только что заняли 😔"))
		sess.State = StateTime
		h.renderState(ctx, sess, userID, chatID, messageID, now)

	case errors.Is(err, ledger.ErrPastDate), errors.Is(err, ledger.ErrInvalidSlot):
		// Дата успела устареть, пока пользователь думал.
		sess.State = StateDate
		h.renderState(ctx, sess, userID, chatID, messageID, now)

	case errors.Is(err, ledger.ErrUnknownClient), errors.Is(err, ledger.ErrUnknownService):
		sess.ResetFlow()
		h.renderState(ctx, sess, userID, chatID, messageID, now)

	default:
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("booking failed")
		h.editError(chatID, messageID)
	}
}

// notifyAdmins sends text to every configured admin. Best effort: a
// failed delivery is logged and the rest of the list still gets it.
func (h *Handler) notifyAdmins(text string) {
	if h.notifier == nil {
		return
	}
	for _, id := range h.adminIDs {
		if _, err := h.notifier.Send(id, text); err != nil {
			h.logger.Warn().Err(err).Int64("admin_id", id).Msg("admin notification not delivered")
		}
	}
}

// renderState redraws the current screen of the dialogue.
func (h *Handler) renderState(ctx context.Context, sess *Session, userID, chatID int64, messageID int, now time.Time) {
	switch sess.State {
	case StateMain:
		h.edit(chatID, messageID, "Выберите действие:", MainMenu(h.isAdmin(userID)))

	case StateName:
		h.edit(chatID, messageID, "👤 Как вас зовут? Введите имя сообщением.", BackMenu())

	case StatePhone:
		h.edit(chatID, messageID, "📱 Введите ваш номер телефона:", BackMenu())

	case StateService:
		h.edit(chatID, messageID, "💅 Выберите услугу:", ServiceMenu(h.catalog.List()))

	case StateDate:
		view := schedule.Month(sess.CalYear, sess.CalMonth, now)
		h.edit(chatID, messageID, "📅 Выберите дату:", CalendarMenu(view))

	case StateTime:
		free, err := h.ledger.FreeSlots(ctx, sess.Booking.Date)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		if len(free) == 0 {
			sess.State = StateDate
			view := schedule.Month(sess.CalYear, sess.CalMonth, now)
			h.edit(chatID, messageID, "На эту дату всё занято 😔 Выберите другую:", CalendarMenu(view))
			return
		}
		text := fmt.Sprintf("🕐 Свободное время на %s:", HumanDate(sess.Booking.Date))
		h.edit(chatID, messageID, text, TimeMenu(free))

	case StateConfirm:
		svc, err := h.catalog.Get(sess.Booking.ServiceKey)
		if err != nil {
			sess.ResetFlow()
			h.edit(chatID, messageID, "Выберите действие:", MainMenu(h.isAdmin(userID)))
			return
		}
		h.edit(chatID, messageID, ConfirmText(sess.Booking, svc), ConfirmMenu())

	case StateMy:
		mine, err := h.ledger.ListByUser(ctx, userID, now)
		if err != nil {
			h.editError(chatID, messageID)
			return
		}
		h.edit(chatID, messageID, MyListText(mine), MyMenu(mine))

	case StateAdmin:
		h.edit(chatID, messageID, "👑 Панель управления:", AdminMenu())

	default:
		h.edit(chatID, messageID, "Выберите действие:", MainMenu(h.isAdmin(userID)))
	}
}

func (h *Handler) edit(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := h.bot.Send(edit); err != nil {
		h.logger.Warn().Err(err).Msg("edit message")
	}
}

func (h *Handler) editError(chatID int64, messageID int) {
	h.edit(chatID, messageID, "Что-то пошло не так, попробуйте ещё раз.", BackMenu())
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn().Err(err).Msg("send reply")
	}
}
