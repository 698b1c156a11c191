// internal/reports/alerts/repository.go
package alerts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"report-workers/internal/common/database"
	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/catalog"
)

// Repository persists alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Alert, error)
	// ClaimDue locks up to limit due alerts, marks them triggered and returns
	// them with their next trigger already advanced. Concurrent callers never
	// receive the same alert.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Alert, error)
	MarkTriggered(ctx context.Context, id string, at time.Time, next *time.Time) error
	Deactivate(ctx context.Context, id string) error
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS report_alerts (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	command TEXT NOT NULL,
	description TEXT,
	alert_type TEXT NOT NULL,
	frequency TEXT NOT NULL,
	conditions JSONB,
	schedule JSONB,
	report_type TEXT NOT NULL,
	format TEXT NOT NULL,
	command_params JSONB,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	notify_email BOOLEAN NOT NULL DEFAULT TRUE,
	notify_in_app BOOLEAN NOT NULL DEFAULT TRUE,
	email_recipient TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	last_triggered TIMESTAMPTZ,
	next_trigger TIMESTAMPTZ
)`

const createIndexSQL = `CREATE INDEX IF NOT EXISTS report_alerts_due_idx
	ON report_alerts (next_trigger) WHERE active AND alert_type = 'scheduled'`

const alertColumns = `id, user_id, command, description, alert_type, frequency, conditions, schedule,
	report_type, format, command_params, active, notify_email, notify_in_app, email_recipient,
	created_at, updated_at, last_triggered, next_trigger`

const insertAlertSQL = `INSERT INTO report_alerts (` + alertColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

const selectDueSQL = `SELECT ` + alertColumns + ` FROM report_alerts
	WHERE active AND alert_type = 'scheduled' AND next_trigger <= $1
	ORDER BY next_trigger
	LIMIT $2`

const claimDueSQL = selectDueSQL + ` FOR UPDATE SKIP LOCKED`

const markTriggeredSQL = `UPDATE report_alerts
	SET last_triggered = $2, next_trigger = $3, updated_at = $2
	WHERE id = $1`

const deactivateSQL = `UPDATE report_alerts SET active = FALSE, updated_at = $2 WHERE id = $1`

// PostgresRepository stores alerts in the report_alerts table.
type PostgresRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: log}
}

// EnsureSchema creates the alerts table and its due-index when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return errors.NewDatabaseConnectionFailedError(fmt.Errorf("create report_alerts: %w", err))
	}
	if _, err := r.db.ExecContext(ctx, createIndexSQL); err != nil {
		return errors.NewDatabaseConnectionFailedError(fmt.Errorf("create report_alerts index: %w", err))
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *Alert) error {
	conditions, err := jsonColumn(a.Condition)
	if err != nil {
		return errors.NewAlertPersistFailedError(err)
	}
	schedule, err := jsonColumn(a.Schedule)
	if err != nil {
		return errors.NewAlertPersistFailedError(err)
	}
	params, err := jsonColumn(a.CommandParams)
	if err != nil {
		return errors.NewAlertPersistFailedError(err)
	}

	_, err = r.db.ExecContext(ctx, insertAlertSQL,
		a.ID, a.UserID, a.Command, nullString(a.Description), string(a.Type), string(a.Frequency),
		conditions, schedule, string(a.ReportType), string(a.Format), params,
		a.Active, a.NotifyEmail, a.NotifyInApp, nullString(a.EmailRecipient),
		a.CreatedAt, a.UpdatedAt, nullTime(a.LastTriggered), nullTime(a.NextTrigger),
	)
	if err != nil {
		return errors.NewAlertPersistFailedError(err)
	}

	r.logger.Info("Report alert stored", map[string]interface{}{
		"alertId":   a.ID,
		"userId":    a.UserID,
		"alertType": a.Type,
		"frequency": a.Frequency,
	})
	return nil
}

func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*Alert, error) {
	rows, err := r.db.QueryContext(ctx, selectDueSQL, now, limit)
	if err != nil {
		return nil, errors.NewAlertQueryFailedError(err)
	}
	defer rows.Close()

	out, err := scanAlerts(rows)
	if err != nil {
		return nil, errors.NewAlertQueryFailedError(err)
	}
	return out, nil
}

func (r *PostgresRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Alert, error) {
	var claimed []*Alert

	err := database.InTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, claimDueSQL, now, limit)
		if err != nil {
			return errors.NewAlertQueryFailedError(err)
		}
		due, err := scanAlerts(rows)
		rows.Close()
		if err != nil {
			return errors.NewAlertQueryFailedError(err)
		}

		for _, a := range due {
			a.MarkTriggered(now)
			if _, err := tx.ExecContext(ctx, markTriggeredSQL, a.ID, now, nullTime(a.NextTrigger)); err != nil {
				return errors.NewAlertPersistFailedError(err)
			}
		}
		claimed = due
		return nil
	})
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeInternal {
			return nil, errors.NewAlertPersistFailedError(err)
		}
		return nil, err
	}
	return claimed, nil
}

func (r *PostgresRepository) MarkTriggered(ctx context.Context, id string, at time.Time, next *time.Time) error {
	res, err := r.db.ExecContext(ctx, markTriggeredSQL, id, at, nullTime(next))
	if err != nil {
		return errors.NewAlertPersistFailedError(err)
	}
	return requireRow(res, id)
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deactivateSQL, id, time.Now().UTC())
	if err != nil {
		return errors.NewAlertPersistFailedError(err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewAlertPersistFailedError(err)
	}
	if n == 0 {
		return errors.NewResourceNotFoundError("report_alerts", fmt.Sprintf("alert %s not found", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlerts(rows *sql.Rows) ([]*Alert, error) {
	var out []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAlert(row rowScanner) (*Alert, error) {
	var (
		a                                        Alert
		alertType, frequency, reportType, format string
		description, emailRecipient              sql.NullString
		conditions, schedule, params             []byte
		lastTriggered, nextTrigger               sql.NullTime
	)

	err := row.Scan(
		&a.ID, &a.UserID, &a.Command, &description, &alertType, &frequency, &conditions, &schedule,
		&reportType, &format, &params, &a.Active, &a.NotifyEmail, &a.NotifyInApp, &emailRecipient,
		&a.CreatedAt, &a.UpdatedAt, &lastTriggered, &nextTrigger,
	)
	if err != nil {
		return nil, fmt.Errorf("scan alert: %w", err)
	}

	a.Description = description.String
	a.EmailRecipient = emailRecipient.String
	a.Type = AlertType(alertType)
	a.Frequency = Frequency(frequency)
	a.ReportType = catalog.ReportID(reportType)
	a.Format = catalog.Format(format)

	if len(conditions) > 0 {
		a.Condition = &Condition{}
		if err := json.Unmarshal(conditions, a.Condition); err != nil {
			return nil, fmt.Errorf("decode conditions of %s: %w", a.ID, err)
		}
	}
	if len(schedule) > 0 {
		a.Schedule = &Schedule{}
		if err := json.Unmarshal(schedule, a.Schedule); err != nil {
			return nil, fmt.Errorf("decode schedule of %s: %w", a.ID, err)
		}
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &a.CommandParams); err != nil {
			return nil, fmt.Errorf("decode command params of %s: %w", a.ID, err)
		}
	}
	if lastTriggered.Valid {
		t := lastTriggered.Time
		a.LastTriggered = &t
	}
	if nextTrigger.Valid {
		t := nextTrigger.Time
		a.NextTrigger = &t
	}
	return &a, nil
}

// jsonColumn encodes v for a JSONB column; nil values become SQL NULL.
func jsonColumn(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case *Condition:
		if t == nil {
			return nil, nil
		}
	case *Schedule:
		if t == nil {
			return nil, nil
		}
	case map[string]interface{}:
		if t == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
