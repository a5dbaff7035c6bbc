// Package ledger is the booking engine: it validates a requested
// appointment against the catalog, the slot grid and the client
// directory, and commits it through the store's atomic check-and-insert
// so that two clients racing for the same (date, slot) can never both
// win.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/julianails/tg_booking_bot/pkg/booking/catalog"
	"github.com/julianails/tg_booking_bot/pkg/booking/schedule"
	"github.com/julianails/tg_booking_bot/pkg/repository/model"
	"github.com/rs/zerolog"
)

// Ожидаемые исходы бронирования и отмены. Всё остальное — ошибки
// хранилища, которые пробрасываются как есть.
var (
	ErrUnknownService = catalog.ErrUnknownService
	ErrPastDate       = errors.New("date is in the past")
	ErrInvalidSlot    = errors.New("slot is not on the grid")
	ErrUnknownClient  = errors.New("client is not registered")
	ErrSlotTaken      = model.ErrSlotTaken
	ErrNotFound       = model.ErrNotFound
	ErrNotOwner       = errors.New("appointment belongs to another client")
)

type Ledger struct {
	store   model.Store
	catalog *catalog.Catalog
	grid    *schedule.Grid
	logger  zerolog.Logger
}

func New(store model.Store, cat *catalog.Catalog, grid *schedule.Grid, logger zerolog.Logger) *Ledger {
	return &Ledger{
		store:   store,
		catalog: cat,
		grid:    grid,
		logger:  logger.With().Str("component", "ledger").Logger(),
	}
}

// BookedSlots returns the occupied slots of a date, for rendering
// availability before a booking attempt.
func (l *Ledger) BookedSlots(ctx context.Context, date string) ([]string, error) {
	return l.store.BookedSlots(ctx, date)
}

// FreeSlots returns the grid minus the occupied slots of a date.
func (l *Ledger) FreeSlots(ctx context.Context, date string) ([]string, error) {
	booked, err := l.store.BookedSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(booked))
	for _, s := range booked {
		taken[s] = struct{}{}
	}
	var free []string
	for _, s := range l.grid.Slots() {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free, nil
}

// Book validates and commits an appointment. The price is snapshotted
// from the catalog at commit time. The slot check, the insert and the
// client's visit-count increment are one atomic storage operation: a
// losing racer gets ErrSlotTaken and leaves no trace.
func (l *Ledger) Book(ctx context.Context, userID int64, serviceKey, date, slot string, now time.Time) (model.Appointment, error) {
	svc, err := l.catalog.Get(serviceKey)
	if err != nil {
		return model.Appointment{}, ErrUnknownService
	}
	if !l.grid.ValidSlot(slot) {
		return model.Appointment{}, ErrInvalidSlot
	}
	if !l.grid.DateEligible(date, now) {
		return model.Appointment{}, ErrPastDate
	}
	if _, err := l.store.GetClient(ctx, userID); err != nil {
		if errors.Is(err, model.ErrClientNotFound) {
			return model.Appointment{}, ErrUnknownClient
		}
		return model.Appointment{}, err
	}

	created, err := l.store.CreateAppointment(ctx, model.Appointment{
		UserID:      userID,
		ServiceKey:  svc.Key,
		ServiceName: svc.Name,
		Date:        date,
		Slot:        slot,
		Price:       svc.Price,
		CreatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, model.ErrSlotTaken) {
			l.logger.Info().Int64("user_id", userID).Str("date", date).Str("slot", slot).Msg("slot race lost")
			return model.Appointment{}, ErrSlotTaken
		}
		if errors.Is(err, model.ErrClientNotFound) {
			return model.Appointment{}, ErrUnknownClient
		}
		return model.Appointment{}, err
	}

	l.logger.Info().
		Int64("id", created.ID).
		Int64("user_id", userID).
		Str("service", svc.Key).
		Str("date", date).
		Str("slot", slot).
		Msg("appointment booked")
	return created, nil
}

// Cancel transitions an appointment to cancelled. Cancelling an
// already-cancelled appointment is an idempotent success. Non-admin
// actors may only cancel their own appointments.
func (l *Ledger) Cancel(ctx context.Context, id, actorID int64, isAdmin bool, now time.Time) (model.Appointment, error) {
	a, err := l.store.GetAppointment(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	// Право на запись проверяется до идемпотентного выхода: чужая
	// запись не раскрывается даже после её отмены.
	if !isAdmin && a.UserID != actorID {
		return model.Appointment{}, ErrNotOwner
	}
	if a.Status == model.StatusCancelled {
		return a, nil
	}

	cancelled, err := l.store.CancelAppointment(ctx, id, now)
	if err != nil {
		return model.Appointment{}, err
	}
	l.logger.Info().Int64("id", id).Int64("actor_id", actorID).Bool("admin", isAdmin).Msg("appointment cancelled")
	return cancelled, nil
}

func (l *Ledger) Get(ctx context.Context, id int64) (model.Appointment, error) {
	return l.store.GetAppointment(ctx, id)
}

// ListByUser returns the client's pending, future-dated appointments
// ordered by date then slot.
func (l *Ledger) ListByUser(ctx context.Context, userID int64, now time.Time) ([]model.Appointment, error) {
	return l.store.ListByUser(ctx, userID, now.Format(model.DateLayout))
}

// ListAll returns appointments joined with client info for the admin
// view. An empty status returns every appointment.
func (l *Ledger) ListAll(ctx context.Context, status model.Status) ([]model.AppointmentWithClient, error) {
	return l.store.ListAll(ctx, status)
}
