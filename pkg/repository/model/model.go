package model

import (
	"context"
	"errors"
	"time"
)

// Даты и слоты ходят по хранилищу строками, как их выбирает клиент.
const (
	DateLayout = "2006-01-02"
	SlotLayout = "15:04"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// Storage-level outcomes the ledger translates for callers.
var (
	ErrSlotTaken      = errors.New("slot already taken")
	ErrNotFound       = errors.New("appointment not found")
	ErrClientNotFound = errors.New("client not found")
)

type Client struct {
	UserID      int64
	Username    string
	FullName    string
	Phone       string
	TotalVisits int
	CreatedAt   time.Time
}

type Appointment struct {
	ID          int64
	UserID      int64
	ServiceKey  string
	ServiceName string
	Date        string // YYYY-MM-DD
	Slot        string // HH:MM
	Price       int    // снимок цены на момент записи
	Status      Status
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// AppointmentWithClient joins an appointment with its client row,
// used by admin listings, schedules and reminders.
type AppointmentWithClient struct {
	Appointment
	FullName string
	Phone    string
	Username string
}

// Store is the persistence contract of the booking engine. Both the
// pgx and the in-memory implementations must keep CreateAppointment
// atomic: the pending-slot check, the insert and the visit-count
// increment either all happen or none do, even under concurrent calls
// for the same (date, slot).
type Store interface {
	// Клиенты
	UpsertClient(ctx context.Context, c Client) (Client, error)
	GetClient(ctx context.Context, userID int64) (Client, error)
	CountClients(ctx context.Context) (int, error)

	// Записи
	CreateAppointment(ctx context.Context, a Appointment) (Appointment, error)
	GetAppointment(ctx context.Context, id int64) (Appointment, error)
	CancelAppointment(ctx context.Context, id int64, at time.Time) (Appointment, error)
	BookedSlots(ctx context.Context, date string) ([]string, error)
	ListByUser(ctx context.Context, userID int64, fromDate string) ([]Appointment, error)
	ListAll(ctx context.Context, status Status) ([]AppointmentWithClient, error)
	ListByDateRange(ctx context.Context, from, to string) ([]AppointmentWithClient, error)

	Close()
}
