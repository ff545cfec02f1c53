// Package sqlite is the embedded single-node store, built on gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scriptguard/internal/domain"
	"scriptguard/internal/ports"
)

// Store implements ports.Store on a gorm database.
type Store struct {
	db *gorm.DB
}

var _ ports.Store = (*Store)(nil)

// Open opens (or creates) a sqlite database and migrates its schema. Use
// ":memory:" for a throwaway database.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps ":memory:" to a single database.
	sqlDB.SetMaxOpenConns(1)

	s := New(db)
	if err := s.AutoMigrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// AutoMigrate creates or updates every table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&scriptRow{}, &logRow{}, &alertRow{}, &jobRow{}); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ScriptRepository

func (s *Store) CreateScript(ctx context.Context, sc *domain.AuthorizedScript) error {
	row := scriptFromDomain(sc)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateScript
		}
		return fmt.Errorf("create script: %w", err)
	}
	return nil
}

func (s *Store) GetScript(ctx context.Context, id string) (*domain.AuthorizedScript, error) {
	var row scriptRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get script: %w", err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) FindScriptByURL(ctx context.Context, storeID int, url string) (*domain.AuthorizedScript, error) {
	var rows []scriptRow
	err := s.db.WithContext(ctx).Where("store_id = ? AND url = ?", storeID, url).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find script: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (s *Store) ListScripts(ctx context.Context, f ports.ScriptFilter) ([]domain.AuthorizedScript, error) {
	q := s.db.WithContext(ctx).Model(&scriptRow{})
	if f.StoreID != 0 {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Domain != "" {
		q = q.Where("domain = ?", strings.ToLower(f.Domain))
	}
	var rows []scriptRow
	if err := q.Order("authorized_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	return scriptsToDomain(rows), nil
}

func (s *Store) ListScriptsVerifiedBefore(ctx context.Context, storeID int, cutoff time.Time) ([]domain.AuthorizedScript, error) {
	var rows []scriptRow
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ? AND last_verified_at < ?", storeID, true, utc(cutoff)).
		Order("last_verified_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list expired scripts: %w", err)
	}
	return scriptsToDomain(rows), nil
}

func scriptsToDomain(rows []scriptRow) []domain.AuthorizedScript {
	out := make([]domain.AuthorizedScript, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

func (s *Store) UpdateScriptHash(ctx context.Context, id, hash string, verifiedAt time.Time) error {
	return s.updateScript(ctx, id, map[string]any{"hash": hash, "last_verified_at": utc(verifiedAt)})
}

func (s *Store) TouchScript(ctx context.Context, id string, verifiedAt time.Time) error {
	return s.updateScript(ctx, id, map[string]any{"last_verified_at": utc(verifiedAt)})
}

func (s *Store) SetScriptActive(ctx context.Context, id string, active bool) error {
	return s.updateScript(ctx, id, map[string]any{"is_active": active})
}

func (s *Store) updateScript(ctx context.Context, id string, updates map[string]any) error {
	res := s.db.WithContext(ctx).Model(&scriptRow{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update script: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MonitoringLogRepository

func (s *Store) InsertLog(ctx context.Context, l *domain.MonitoringLog) error {
	row := logFromDomain(l)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert monitoring log: %w", err)
	}
	return nil
}

func (s *Store) MarkLogAlertSent(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&logRow{}).Where("id = ?", id).Update("alert_sent", true)
	if res.Error != nil {
		return fmt.Errorf("mark log alert sent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) ListLogs(ctx context.Context, f ports.LogFilter) ([]domain.MonitoringLog, error) {
	q := s.db.WithContext(ctx).Model(&logRow{})
	if f.StoreID != 0 {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if f.From != nil {
		q = q.Where("checked_at >= ?", utc(*f.From))
	}
	if f.To != nil {
		q = q.Where("checked_at <= ?", utc(*f.To))
	}
	if f.OnlyUnauthorized {
		q = q.Where("has_unauthorized_scripts = ?", true)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []logRow
	if err := q.Order("checked_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list monitoring logs: %w", err)
	}
	out := make([]domain.MonitoringLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) DeleteLogsBefore(ctx context.Context, storeID int, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("store_id = ? AND checked_at < ?", storeID, utc(cutoff)).Delete(&logRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete monitoring logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// AlertRepository

func (s *Store) FindOpenAlert(ctx context.Context, storeID int, t domain.AlertType, scriptURL string) (*domain.ComplianceAlert, error) {
	var rows []alertRow
	err := s.db.WithContext(ctx).
		Where("dedup_key = ?", domain.AlertDedupKey(storeID, t, scriptURL)).
		Limit(1).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find open alert: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (s *Store) CreateAlert(ctx context.Context, a *domain.ComplianceAlert) error {
	row := alertFromDomain(a)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAlert
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (s *Store) TouchAlert(ctx context.Context, id string, seenAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&alertRow{}).Where("id = ?", id).Updates(map[string]any{
		"occurrences":  gorm.Expr("occurrences + 1"),
		"last_seen_at": utc(seenAt),
	})
	if res.Error != nil {
		return fmt.Errorf("touch alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) LastEmailSent(ctx context.Context, storeID int, t domain.AlertType, scriptURL string) (*time.Time, error) {
	var rows []alertRow
	err := s.db.WithContext(ctx).
		Where("store_id = ? AND type = ? AND script_url = ? AND email_sent = ?", storeID, string(t), scriptURL, true).
		Order("email_sent_at DESC").
		Limit(1).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("last email sent: %w", err)
	}
	if len(rows) == 0 || rows[0].EmailSentAt == nil {
		return nil, nil
	}
	return rows[0].EmailSentAt, nil
}

func (s *Store) MarkAlertsEmailSent(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&alertRow{}).Where("id IN ?", ids).Updates(map[string]any{
		"email_sent":    true,
		"email_sent_at": utc(at),
	}).Error
	if err != nil {
		return fmt.Errorf("mark alerts email sent: %w", err)
	}
	return nil
}

func (s *Store) GetAlert(ctx context.Context, id string) (*domain.ComplianceAlert, error) {
	var row alertRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	out := row.toDomain()
	return &out, nil
}

func (s *Store) ResolveAlert(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.ComplianceAlert, error) {
	var resolved *domain.ComplianceAlert
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []alertRow
		if err := tx.Where("id = ? AND is_resolved = ?", id, false).Limit(1).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		when := utc(at)
		if err := tx.Model(&alertRow{}).Where("id = ?", id).Updates(map[string]any{
			"is_resolved": true,
			"resolved_by": resolvedBy,
			"resolved_at": when,
			"dedup_key":   nil,
		}).Error; err != nil {
			return err
		}
		row := rows[0]
		row.IsResolved = true
		row.ResolvedBy = resolvedBy
		row.ResolvedAt = &when
		out := row.toDomain()
		resolved = &out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve alert: %w", err)
	}
	return resolved, nil
}

func (s *Store) ListAlerts(ctx context.Context, f ports.AlertFilter) ([]domain.ComplianceAlert, error) {
	q := s.db.WithContext(ctx).Model(&alertRow{})
	if f.StoreID != 0 {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", string(f.Type))
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", utc(*f.From))
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", utc(*f.To))
	}
	if f.UnresolvedOnly {
		q = q.Where("is_resolved = ?", false)
	}
	var rows []alertRow
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	out := make([]domain.ComplianceAlert, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) DeleteResolvedAlertsBefore(ctx context.Context, storeID int, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("store_id = ? AND is_resolved = ? AND created_at < ?", storeID, true, utc(cutoff)).
		Delete(&alertRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete resolved alerts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
