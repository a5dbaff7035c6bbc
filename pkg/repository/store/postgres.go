package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/julianails/tg_booking_bot/pkg/repository/model"
	"github.com/julianails/tg_booking_bot/pkg/utils/errs"
)

// PG is the Postgres-backed Store. Double booking is prevented by the
// partial unique index over (visit_date, visit_time) scoped to
// status = 'pending': the losing writer of a race gets a unique
// violation, which maps to model.ErrSlotTaken. Cancelled rows fall out
// of the index, so cancelling frees the slot for rebooking.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(ctx context.Context, dsn string) (*PG, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.New("parse postgres dsn").Wrap(err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errs.New("create postgres pool").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.New("ping postgres").Wrap(err)
	}
	return &PG{pool: pool}, nil
}

// InitSchema creates the tables and the pending-slot uniqueness index.
func (r *PG) InitSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS clients (
			user_id      BIGINT PRIMARY KEY,
			username     TEXT NOT NULL DEFAULT '',
			full_name    TEXT NOT NULL DEFAULT '',
			phone        TEXT NOT NULL DEFAULT '',
			total_visits INT  NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS appointments (
			id           BIGSERIAL PRIMARY KEY,
			user_id      BIGINT NOT NULL REFERENCES clients(user_id),
			service_key  TEXT NOT NULL,
			service_name TEXT NOT NULL,
			visit_date   TEXT NOT NULL,
			visit_time   TEXT NOT NULL,
			price        INT  NOT NULL,
			status       TEXT NOT NULL DEFAULT 'pending',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			cancelled_at TIMESTAMPTZ
		);

		CREATE UNIQUE INDEX IF NOT EXISTS appointments_active_slot
			ON appointments (visit_date, visit_time)
			WHERE status = 'pending';
		CREATE INDEX IF NOT EXISTS appointments_user
			ON appointments (user_id);
		CREATE INDEX IF NOT EXISTS appointments_status
			ON appointments (status);
	`
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return errs.New("init schema").Wrap(err)
	}
	return nil
}

func (r *PG) UpsertClient(ctx context.Context, c model.Client) (model.Client, error) {
	const q = `
		INSERT INTO clients (user_id, username, full_name, phone)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE
		   SET username  = EXCLUDED.username,
		       full_name = EXCLUDED.full_name,
		       phone     = EXCLUDED.phone
		RETURNING user_id, username, full_name, phone, total_visits, created_at;
	`
	var out model.Client
	err := r.pool.QueryRow(ctx, q, c.UserID, c.Username, c.FullName, c.Phone).
		Scan(&out.UserID, &out.Username, &out.FullName, &out.Phone, &out.TotalVisits, &out.CreatedAt)
	if err != nil {
		return model.Client{}, errs.New("upsert client").Arg("user_id", c.UserID).Wrap(err)
	}
	return out, nil
}

func (r *PG) GetClient(ctx context.Context, userID int64) (model.Client, error) {
	const q = `
		SELECT user_id, username, full_name, phone, total_visits, created_at
		FROM clients WHERE user_id = $1;
	`
	var c model.Client
	err := r.pool.QueryRow(ctx, q, userID).
		Scan(&c.UserID, &c.Username, &c.FullName, &c.Phone, &c.TotalVisits, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Client{}, model.ErrClientNotFound
		}
		return model.Client{}, errs.New("get client").Arg("user_id", userID).Wrap(err)
	}
	return c, nil
}

func (r *PG) CountClients(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, errs.New("count clients").Wrap(err)
	}
	return n, nil
}

func (r *PG) CreateAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, errs.New("begin booking tx").Wrap(err)
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO appointments (user_id, service_key, service_name, visit_date, visit_time, price, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')
		RETURNING id, created_at;
	`
	created := a
	created.Status = model.StatusPending
	created.CancelledAt = nil
	err = tx.QueryRow(ctx, insert, a.UserID, a.ServiceKey, a.ServiceName, a.Date, a.Slot, a.Price).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && (pgerr.Code == "23505" || pgerr.Code == "23P01") {
			return model.Appointment{}, model.ErrSlotTaken
		}
		return model.Appointment{}, errs.New("insert appointment").Wrap(err)
	}

	// Инкремент визитов — в той же транзакции, что и вставка.
	tag, err := tx.Exec(ctx, `UPDATE clients SET total_visits = total_visits + 1 WHERE user_id = $1`, a.UserID)
	if err != nil {
		return model.Appointment{}, errs.New("increment visits").Arg("user_id", a.UserID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return model.Appointment{}, model.ErrClientNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, errs.New("commit booking tx").Wrap(err)
	}
	return created, nil
}

const appointmentColumns = `id, user_id, service_key, service_name, visit_date, visit_time, price, status, created_at, cancelled_at`

func (r *PG) GetAppointment(ctx context.Context, id int64) (model.Appointment, error) {
	q := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1;`
	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Appointment{}, model.ErrNotFound
		}
		return model.Appointment{}, errs.New("get appointment").Arg("id", id).Wrap(err)
	}
	return a, nil
}

func (r *PG) CancelAppointment(ctx context.Context, id int64, at time.Time) (model.Appointment, error) {
	q := `
		UPDATE appointments
		SET status = 'cancelled', cancelled_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + appointmentColumns + `;`
	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id, at))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, errs.New("cancel appointment").Arg("id", id).Wrap(err)
	}
	// Уже отменена или не существует.
	return r.GetAppointment(ctx, id)
}

func (r *PG) BookedSlots(ctx context.Context, date string) ([]string, error) {
	const q = `
		SELECT visit_time FROM appointments
		WHERE visit_date = $1 AND status = 'pending'
		ORDER BY visit_time;
	`
	rows, err := r.pool.Query(ctx, q, date)
	if err != nil {
		return nil, errs.New("booked slots").Arg("date", date).Wrap(err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, errs.New("scan booked slot").Wrap(err)
		}
		out = append(out, slot)
	}
	return out, rows.Err()
}

func (r *PG) ListByUser(ctx context.Context, userID int64, fromDate string) ([]model.Appointment, error) {
	q := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE user_id = $1 AND status = 'pending' AND visit_date >= $2
		ORDER BY visit_date, visit_time;
	`
	rows, err := r.pool.Query(ctx, q, userID, fromDate)
	if err != nil {
		return nil, errs.New("list by user").Arg("user_id", userID).Wrap(err)
	}
	defer rows.Close()
	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, errs.New("scan appointment").Wrap(err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PG) ListAll(ctx context.Context, status model.Status) ([]model.AppointmentWithClient, error) {
	q := `
		SELECT a.id, a.user_id, a.service_key, a.service_name, a.visit_date, a.visit_time,
		       a.price, a.status, a.created_at, a.cancelled_at,
		       c.full_name, c.phone, c.username
		FROM appointments a
		JOIN clients c ON c.user_id = a.user_id
	`
	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		rows, err = r.pool.Query(ctx, q+` WHERE a.status = $1 ORDER BY a.visit_date, a.visit_time;`, status)
	} else {
		// История по всем статусам читается от свежих дат к старым.
		rows, err = r.pool.Query(ctx, q+` ORDER BY a.visit_date DESC, a.visit_time;`)
	}
	if err != nil {
		return nil, errs.New("list all appointments").Wrap(err)
	}
	defer rows.Close()
	return scanJoined(rows)
}

func (r *PG) ListByDateRange(ctx context.Context, from, to string) ([]model.AppointmentWithClient, error) {
	const q = `
		SELECT a.id, a.user_id, a.service_key, a.service_name, a.visit_date, a.visit_time,
		       a.price, a.status, a.created_at, a.cancelled_at,
		       c.full_name, c.phone, c.username
		FROM appointments a
		JOIN clients c ON c.user_id = a.user_id
		WHERE a.status = 'pending' AND a.visit_date BETWEEN $1 AND $2
		ORDER BY a.visit_date, a.visit_time;
	`
	rows, err := r.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, errs.New("list by date range").Wrap(err)
	}
	defer rows.Close()
	return scanJoined(rows)
}

func (r *PG) Close() {
	r.pool.Close()
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.UserID, &a.ServiceKey, &a.ServiceName, &a.Date, &a.Slot,
		&a.Price, &a.Status, &a.CreatedAt, &a.CancelledAt)
	return a, err
}

func scanJoined(rows pgx.Rows) ([]model.AppointmentWithClient, error) {
	var out []model.AppointmentWithClient
	for rows.Next() {
		var j model.AppointmentWithClient
		err := rows.Scan(&j.ID, &j.UserID, &j.ServiceKey, &j.ServiceName, &j.Date, &j.Slot,
			&j.Price, &j.Status, &j.CreatedAt, &j.CancelledAt,
			&j.FullName, &j.Phone, &j.Username)
		if err != nil {
			return nil, errs.New("scan joined appointment").Wrap(err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
