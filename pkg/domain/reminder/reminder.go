// Package reminder sends next-day visit reminders on a cron schedule.
// Delivery is best effort: a failed send is logged and skipped, the
// ledger is never touched.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/julianails/tg_booking_bot/pkg/repository/model"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sender is the outbound notification channel (the bot sender).
type Sender interface {
	Send(chatID int64, text string) (int, error)
}

type Reminder struct {
	store  model.Store
	sender Sender
	cron   *cron.Cron
	logger zerolog.Logger
	now    func() time.Time
}

func New(store model.Store, sender Sender, logger zerolog.Logger) *Reminder {
	return &Reminder{
		store:  store,
		sender: sender,
		cron:   cron.New(),
		logger: logger.With().Str("component", "reminder").Logger(),
		now:    time.Now,
	}
}

// Start schedules the daily run. spec is a standard cron expression,
// e.g. "0 18 * * *" for every day at 18:00.
func (r *Reminder) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		r.Run(ctx)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Reminder) Stop() {
	r.cron.Stop()
}

// Run sends a reminder for every pending appointment of tomorrow.
func (r *Reminder) Run(ctx context.Context) {
	tomorrow := r.now().AddDate(0, 0, 1).Format(model.DateLayout)
	appointments, err := r.store.ListByDateRange(ctx, tomorrow, tomorrow)
	if err != nil {
		r.logger.Error().Err(err).Msg("list tomorrow's appointments")
		return
	}

	for _, a := range appointments {
		text := fmt.Sprintf(
			"🔔 <b>Напоминание о записи</b>\n\n"+
				"Завтра в %s — %s.\nЖдём вас! 💅",
			a.Slot, a.ServiceName)
		// chat id личного диалога совпадает с user id
		if _, err := r.sender.Send(a.UserID, text); err != nil {
			r.logger.Warn().Err(err).Int64("appointment_id", a.ID).Msg("reminder not delivered")
		}
	}
	r.logger.Info().Int("count", len(appointments)).Str("date", tomorrow).Msg("reminders dispatched")
}
