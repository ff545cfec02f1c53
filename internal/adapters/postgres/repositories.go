package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"scriptguard/internal/domain"
	"scriptguard/internal/ports"
)

// ScriptRepository

const scriptColumns = `id, store_id, url, domain, hash, hash_algorithm, purpose, justification,
	risk_level, is_active, source, authorized_by, authorized_at, last_verified_at`

func scanScript(row pgx.Row) (domain.AuthorizedScript, error) {
	var s domain.AuthorizedScript
	var risk int
	var source string
	err := row.Scan(&s.ID, &s.StoreID, &s.URL, &s.Domain, &s.Hash, &s.HashAlgorithm, &s.Purpose,
		&s.Justification, &risk, &s.IsActive, &source, &s.AuthorizedBy, &s.AuthorizedAt, &s.LastVerifiedAt)
	s.RiskLevel = domain.RiskLevel(risk)
	s.Source = domain.ScriptSource(source)
	s.AuthorizedAt = s.AuthorizedAt.UTC()
	s.LastVerifiedAt = s.LastVerifiedAt.UTC()
	return s, err
}

func collectScripts(rows pgx.Rows) ([]domain.AuthorizedScript, error) {
	defer rows.Close()
	out := []domain.AuthorizedScript{}
	for rows.Next() {
		s, err := scanScript(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) CreateScript(ctx context.Context, s *domain.AuthorizedScript) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO authorized_scripts (`+scriptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, s.ID, s.StoreID, s.URL, strings.ToLower(s.Domain), s.Hash, s.HashAlgorithm, s.Purpose, s.Justification,
		int(s.RiskLevel), s.IsActive, string(s.Source), s.AuthorizedBy, s.AuthorizedAt.UTC(), s.LastVerifiedAt.UTC())
	if isUniqueViolation(err) {
		return domain.ErrDuplicateScript
	}
	if err != nil {
		return fmt.Errorf("create script: %w", err)
	}
	return nil
}

func (db *DB) GetScript(ctx context.Context, id string) (*domain.AuthorizedScript, error) {
	s, err := scanScript(db.Pool.QueryRow(ctx, `SELECT `+scriptColumns+` FROM authorized_scripts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get script: %w", err)
	}
	return &s, nil
}

func (db *DB) FindScriptByURL(ctx context.Context, storeID int, url string) (*domain.AuthorizedScript, error) {
	s, err := scanScript(db.Pool.QueryRow(ctx, `
		SELECT `+scriptColumns+` FROM authorized_scripts WHERE store_id = $1 AND url = $2
	`, storeID, url))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find script: %w", err)
	}
	return &s, nil
}

func (db *DB) ListScripts(ctx context.Context, f ports.ScriptFilter) ([]domain.AuthorizedScript, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.StoreID != 0 {
		add("store_id = $%d", f.StoreID)
	}
	if f.Active != nil {
		add("is_active = $%d", *f.Active)
	}
	if f.Domain != "" {
		add("domain = $%d", strings.ToLower(f.Domain))
	}
	q := `SELECT ` + scriptColumns + ` FROM authorized_scripts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	rows, err := db.Pool.Query(ctx, q+` ORDER BY authorized_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	return collectScripts(rows)
}

func (db *DB) ListScriptsVerifiedBefore(ctx context.Context, storeID int, cutoff time.Time) ([]domain.AuthorizedScript, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+scriptColumns+` FROM authorized_scripts
		WHERE store_id = $1 AND is_active AND last_verified_at < $2
		ORDER BY last_verified_at
	`, storeID, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("list expired scripts: %w", err)
	}
	return collectScripts(rows)
}

func (db *DB) UpdateScriptHash(ctx context.Context, id, hash string, verifiedAt time.Time) error {
	return db.execOne(ctx, `UPDATE authorized_scripts SET hash = $2, last_verified_at = $3 WHERE id = $1`,
		id, hash, verifiedAt.UTC())
}

func (db *DB) TouchScript(ctx context.Context, id string, verifiedAt time.Time) error {
	return db.execOne(ctx, `UPDATE authorized_scripts SET last_verified_at = $2 WHERE id = $1`, id, verifiedAt.UTC())
}

func (db *DB) SetScriptActive(ctx context.Context, id string, active bool) error {
	return db.execOne(ctx, `UPDATE authorized_scripts SET is_active = $2 WHERE id = $1`, id, active)
}

// execOne runs a single-row update and maps zero affected rows to ErrNotFound.
func (db *DB) execOne(ctx context.Context, sql string, args ...any) error {
	tag, err := db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MonitoringLogRepository

const logColumns = `id, store_id, page_url, detected_scripts, unauthorized_scripts, headers,
	total_scripts_found, authorized_scripts_count, unauthorized_scripts_count, has_unauthorized_scripts,
	check_type, alert_sent, fetch_error, duration_ms, checked_at`

func (db *DB) InsertLog(ctx context.Context, l *domain.MonitoringLog) error {
	detected, unauthorized := nonNil(l.DetectedScripts), nonNil(l.UnauthorizedScripts)
	headers := l.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO monitoring_logs (`+logColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, l.ID, l.StoreID, l.PageURL, detected, unauthorized, headers,
		l.TotalScriptsFound, l.AuthorizedScriptsCount, l.UnauthorizedScriptsCount, l.HasUnauthorizedScripts,
		string(l.CheckType), l.AlertSent, l.FetchError, l.DurationMs, l.CheckedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert monitoring log: %w", err)
	}
	return nil
}

func (db *DB) MarkLogAlertSent(ctx context.Context, id string) error {
	return db.execOne(ctx, `UPDATE monitoring_logs SET alert_sent = TRUE WHERE id = $1`, id)
}

func (db *DB) ListLogs(ctx context.Context, f ports.LogFilter) ([]domain.MonitoringLog, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.StoreID != 0 {
		add("store_id = $%d", f.StoreID)
	}
	if f.From != nil {
		add("checked_at >= $%d", f.From.UTC())
	}
	if f.To != nil {
		add("checked_at <= $%d", f.To.UTC())
	}
	if f.OnlyUnauthorized {
		where = append(where, "has_unauthorized_scripts")
	}
	q := `SELECT ` + logColumns + ` FROM monitoring_logs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY checked_at`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list monitoring logs: %w", err)
	}
	defer rows.Close()
	out := []domain.MonitoringLog{}
	for rows.Next() {
		var l domain.MonitoringLog
		var checkType string
		if err := rows.Scan(&l.ID, &l.StoreID, &l.PageURL, &l.DetectedScripts, &l.UnauthorizedScripts, &l.Headers,
			&l.TotalScriptsFound, &l.AuthorizedScriptsCount, &l.UnauthorizedScriptsCount, &l.HasUnauthorizedScripts,
			&checkType, &l.AlertSent, &l.FetchError, &l.DurationMs, &l.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan monitoring log: %w", err)
		}
		l.CheckType = domain.CheckType(checkType)
		l.CheckedAt = l.CheckedAt.UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

func (db *DB) DeleteLogsBefore(ctx context.Context, storeID int, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM monitoring_logs WHERE store_id = $1 AND checked_at < $2`,
		storeID, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete monitoring logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AlertRepository

const alertColumns = `id, store_id, type, level, message, details, script_url, page_url, is_resolved,
	resolved_by, resolved_at, email_sent, email_sent_at, occurrences, last_seen_at, created_at`

func scanAlert(row pgx.Row) (domain.ComplianceAlert, error) {
	var a domain.ComplianceAlert
	var typ, level string
	var details []byte
	err := row.Scan(&a.ID, &a.StoreID, &typ, &level, &a.Message, &details, &a.ScriptURL, &a.PageURL,
		&a.IsResolved, &a.ResolvedBy, &a.ResolvedAt, &a.EmailSent, &a.EmailSentAt, &a.Occurrences,
		&a.LastSeenAt, &a.CreatedAt)
	a.Type = domain.AlertType(typ)
	a.Level = domain.AlertLevel(level)
	if len(details) > 0 {
		a.Details = json.RawMessage(details)
	}
	a.ResolvedAt = utcPtr(a.ResolvedAt)
	a.EmailSentAt = utcPtr(a.EmailSentAt)
	a.LastSeenAt = a.LastSeenAt.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return a, err
}

func (db *DB) FindOpenAlert(ctx context.Context, storeID int, t domain.AlertType, scriptURL string) (*domain.ComplianceAlert, error) {
	a, err := scanAlert(db.Pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM compliance_alerts WHERE dedup_key = $1`,
		domain.AlertDedupKey(storeID, t, scriptURL)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open alert: %w", err)
	}
	return &a, nil
}

func (db *DB) CreateAlert(ctx context.Context, a *domain.ComplianceAlert) error {
	var dedup *string
	if !a.IsResolved {
		k := a.DedupKey()
		dedup = &k
	}
	var details any
	if len(a.Details) > 0 {
		details = []byte(a.Details)
	}
	occurrences := a.Occurrences
	if occurrences < 1 {
		occurrences = 1
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO compliance_alerts (id, store_id, type, level, message, details, script_url, page_url,
			dedup_key, is_resolved, resolved_by, resolved_at, email_sent, email_sent_at, occurrences,
			last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, a.ID, a.StoreID, string(a.Type), string(a.Level), a.Message, details, a.ScriptURL, a.PageURL,
		dedup, a.IsResolved, a.ResolvedBy, utcPtr(a.ResolvedAt), a.EmailSent, utcPtr(a.EmailSentAt), occurrences,
		a.LastSeenAt.UTC(), a.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return domain.ErrDuplicateAlert
	}
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (db *DB) TouchAlert(ctx context.Context, id string, seenAt time.Time) error {
	return db.execOne(ctx, `UPDATE compliance_alerts SET occurrences = occurrences + 1, last_seen_at = $2 WHERE id = $1`,
		id, seenAt.UTC())
}

func (db *DB) LastEmailSent(ctx context.Context, storeID int, t domain.AlertType, scriptURL string) (*time.Time, error) {
	var at *time.Time
	err := db.Pool.QueryRow(ctx, `
		SELECT max(email_sent_at) FROM compliance_alerts
		WHERE store_id = $1 AND type = $2 AND script_url = $3 AND email_sent
	`, storeID, string(t), scriptURL).Scan(&at)
	if err != nil {
		return nil, fmt.Errorf("last email sent: %w", err)
	}
	return utcPtr(at), nil
}

func (db *DB) MarkAlertsEmailSent(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Pool.Exec(ctx, `
		UPDATE compliance_alerts SET email_sent = TRUE, email_sent_at = $2 WHERE id = ANY($1)
	`, ids, at.UTC())
	if err != nil {
		return fmt.Errorf("mark alerts email sent: %w", err)
	}
	return nil
}

func (db *DB) GetAlert(ctx context.Context, id string) (*domain.ComplianceAlert, error) {
	a, err := scanAlert(db.Pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM compliance_alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return &a, nil
}

// ResolveAlert clears the dedup slot so a later occurrence opens a new alert.
func (db *DB) ResolveAlert(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.ComplianceAlert, error) {
	a, err := scanAlert(db.Pool.QueryRow(ctx, `
		UPDATE compliance_alerts
		SET is_resolved = TRUE, resolved_by = $2, resolved_at = $3, dedup_key = NULL
		WHERE id = $1 AND NOT is_resolved
		RETURNING `+alertColumns, id, resolvedBy, at.UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve alert: %w", err)
	}
	return &a, nil
}

func (db *DB) ListAlerts(ctx context.Context, f ports.AlertFilter) ([]domain.ComplianceAlert, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.StoreID != 0 {
		add("store_id = $%d", f.StoreID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("created_at >= $%d", f.From.UTC())
	}
	if f.To != nil {
		add("created_at <= $%d", f.To.UTC())
	}
	if f.UnresolvedOnly {
		where = append(where, "NOT is_resolved")
	}
	q := `SELECT ` + alertColumns + ` FROM compliance_alerts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	rows, err := db.Pool.Query(ctx, q+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	out := []domain.ComplianceAlert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (db *DB) DeleteResolvedAlertsBefore(ctx context.Context, storeID int, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM compliance_alerts WHERE store_id = $1 AND is_resolved AND created_at < $2
	`, storeID, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete resolved alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}
