package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/julianails/tg_booking_bot/pkg/repository/model"
)

// Memory is an in-memory Store used by tests and by local runs without
// a Postgres DSN. A single mutex serializes every mutation, which makes
// the pending-slot check, the insert and the visit increment one
// indivisible step — the same guarantee the pgx store gets from its
// transaction plus the partial unique index.
type Memory struct {
	mu           sync.Mutex
	clients      map[int64]*model.Client
	appointments map[int64]*model.Appointment
	nextID       int64
}

func NewMemory() *Memory {
	return &Memory{
		clients:      make(map[int64]*model.Client),
		appointments: make(map[int64]*model.Appointment),
		nextID:       1,
	}
}

func (m *Memory) UpsertClient(_ context.Context, c model.Client) (model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.clients[c.UserID]; ok {
		existing.Username = c.Username
		existing.FullName = c.FullName
		existing.Phone = c.Phone
		return *existing, nil
	}

	created := c
	created.TotalVisits = 0
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	m.clients[c.UserID] = &created
	return created, nil
}

func (m *Memory) GetClient(_ context.Context, userID int64) (model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[userID]
	if !ok {
		return model.Client{}, model.ErrClientNotFound
	}
	return *c, nil
}

func (m *Memory) CountClients(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients), nil
}

func (m *Memory) CreateAppointment(_ context.Context, a model.Appointment) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[a.UserID]
	if !ok {
		return model.Appointment{}, model.ErrClientNotFound
	}
	for _, existing := range m.appointments {
		if existing.Status == model.StatusPending && existing.Date == a.Date && existing.Slot == a.Slot {
			return model.Appointment{}, model.ErrSlotTaken
		}
	}

	created := a
	created.ID = m.nextID
	created.Status = model.StatusPending
	created.CancelledAt = nil
	m.nextID++
	m.appointments[created.ID] = &created
	client.TotalVisits++
	return created, nil
}

func (m *Memory) GetAppointment(_ context.Context, id int64) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return model.Appointment{}, model.ErrNotFound
	}
	return *a, nil
}

func (m *Memory) CancelAppointment(_ context.Context, id int64, at time.Time) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return model.Appointment{}, model.ErrNotFound
	}
	if a.Status != model.StatusCancelled {
		a.Status = model.StatusCancelled
		cancelledAt := at
		a.CancelledAt = &cancelledAt
	}
	return *a, nil
}

func (m *Memory) BookedSlots(_ context.Context, date string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, a := range m.appointments {
		if a.Status == model.StatusPending && a.Date == date {
			out = append(out, a.Slot)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) ListByUser(_ context.Context, userID int64, fromDate string) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Appointment
	for _, a := range m.appointments {
		if a.UserID == userID && a.Status == model.StatusPending && a.Date >= fromDate {
			out = append(out, *a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (m *Memory) ListAll(_ context.Context, status model.Status) ([]model.AppointmentWithClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.AppointmentWithClient
	for _, a := range m.appointments {
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, m.withClient(*a))
	}
	if status == "" {
		// История по всем статусам — от свежих дат к старым.
		sort.Slice(out, func(i, j int) bool {
			if out[i].Date != out[j].Date {
				return out[i].Date > out[j].Date
			}
			return out[i].Slot < out[j].Slot
		})
	} else {
		sortJoined(out)
	}
	return out, nil
}

func (m *Memory) ListByDateRange(_ context.Context, from, to string) ([]model.AppointmentWithClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.AppointmentWithClient
	for _, a := range m.appointments {
		if a.Status == model.StatusPending && a.Date >= from && a.Date <= to {
			out = append(out, m.withClient(*a))
		}
	}
	sortJoined(out)
	return out, nil
}

func (m *Memory) Close() {}

func (m *Memory) withClient(a model.Appointment) model.AppointmentWithClient {
	joined := model.AppointmentWithClient{Appointment: a}
	if c, ok := m.clients[a.UserID]; ok {
		joined.FullName = c.FullName
		joined.Phone = c.Phone
		joined.Username = c.Username
	}
	return joined
}

// ISO dates and HH:MM slots compare correctly as strings.
func sortAppointments(list []model.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Slot < list[j].Slot
	})
}

func sortJoined(list []model.AppointmentWithClient) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Slot < list[j].Slot
	})
}
