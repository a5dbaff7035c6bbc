package receiver

import (
	"strings"
	"sync"
	"time"
)

// ---------- FSM ----------

type State int

const (
	StateStart State = iota
	StateMain
	StateName    // ждём имя текстом
	StatePhone   // ждём телефон текстом
	StateService // выбор услуги
	StateDate    // выбор даты в календаре
	StateTime    // выбор свободного слота
	StateConfirm
	StateMy
	StateAdmin
)

// BookingData accumulates the fields of one booking dialogue.
type BookingData struct {
	FullName   string
	Phone      string
	ServiceKey string
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
}

type Session struct {
	State   State
	history []State
	Booking BookingData
	// Календарь, который сейчас листает пользователь.
	CalYear  int
	CalMonth time.Month
}

func (s *Session) Go(to State) {
	s.history = append(s.history, s.State)
	s.State = to
}

func (s *Session) Back() {
	if n := len(s.history); n > 0 {
		s.State = s.history[n-1]
		s.history = s.history[:n-1]
	} else {
		s.State = StateMain
	}
}

// ResetFlow drops the dialogue back to the main menu and clears the
// accumulated booking fields.
func (s *Session) ResetFlow() {
	s.State = StateMain
	s.history = s.history[:0]
	s.Booking = BookingData{}
}

// ---------- Session store (in-memory, потокобезопасно) ----------

type SessionStore struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{m: make(map[int64]*Session)}
}

func (s *SessionStore) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.m[userID]; ok {
		return sess
	}
	se := &Session{State: StateMain}
	s.m[userID] = se
	return se
}

// Drop clears a user's session entirely.
func (s *SessionStore) Drop(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

// ---------- Callback keys ----------

const (
	CbStart      = "start"
	CbBook       = "book"
	CbMy         = "my"
	CbBack       = "back"
	CbOk         = "confirm"
	CbAdmin      = "admin"
	CbAdminList  = "admin_list"
	CbAdminToday = "admin_today"
	CbAdminWeek  = "admin_week"
	CbAdminStats = "admin_stats"
	CbIgnore     = "ignore"

	PSvc    = "svc:"    // svc:gel
	PD      = "d:"      // d:2025-06-10
	PT      = "t:"      // t:10:30
	PCal    = "cal:"    // cal:2025-06 — листание месяца
	PCancel = "cancel:" // cancel:42
)

func Is(k, prefix string) (string, bool) {
	if strings.HasPrefix(k, prefix) {
		return strings.TrimPrefix(k, prefix), true
	}
	return "", false
}
