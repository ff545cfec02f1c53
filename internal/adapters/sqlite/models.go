package sqlite

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"scriptguard/internal/domain"
)

type scriptRow struct {
	ID             string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	StoreID        int       `gorm:"column:store_id;uniqueIndex:idx_script_store_url,priority:1;not null"`
	URL            string    `gorm:"column:url;uniqueIndex:idx_script_store_url,priority:2;not null"`
	Domain         string    `gorm:"column:domain;index:idx_script_domain"`
	Hash           string    `gorm:"column:hash"`
	HashAlgorithm  string    `gorm:"column:hash_algorithm"`
	Purpose        string    `gorm:"column:purpose"`
	Justification  string    `gorm:"column:justification"`
	RiskLevel      int       `gorm:"column:risk_level;not null"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	Source         string    `gorm:"column:source"`
	AuthorizedBy   string    `gorm:"column:authorized_by"`
	AuthorizedAt   time.Time `gorm:"column:authorized_at;not null"`
	LastVerifiedAt time.Time `gorm:"column:last_verified_at;not null"`
}

func (scriptRow) TableName() string { return "authorized_scripts" }

type logRow struct {
	ID                       string                                `gorm:"primaryKey;column:id;type:varchar(36)"`
	StoreID                  int                                   `gorm:"column:store_id;index:idx_log_store_checked,priority:1;not null"`
	PageURL                  string                                `gorm:"column:page_url;not null"`
	DetectedScripts          datatypes.JSONSlice[string]           `gorm:"column:detected_scripts"`
	UnauthorizedScripts      datatypes.JSONSlice[string]           `gorm:"column:unauthorized_scripts"`
	Headers                  datatypes.JSONType[map[string]string] `gorm:"column:headers"`
	TotalScriptsFound        int                                   `gorm:"column:total_scripts_found"`
	AuthorizedScriptsCount   int                                   `gorm:"column:authorized_scripts_count"`
	UnauthorizedScriptsCount int                                   `gorm:"column:unauthorized_scripts_count"`
	HasUnauthorizedScripts   bool                                  `gorm:"column:has_unauthorized_scripts"`
	CheckType                string                                `gorm:"column:check_type"`
	AlertSent                bool                                  `gorm:"column:alert_sent"`
	FetchError               string                                `gorm:"column:fetch_error"`
	DurationMs               int64                                 `gorm:"column:duration_ms"`
	CheckedAt                time.Time                             `gorm:"column:checked_at;index:idx_log_store_checked,priority:2;not null"`
}

func (logRow) TableName() string { return "monitoring_logs" }

type alertRow struct {
	ID          string         `gorm:"primaryKey;column:id;type:varchar(36)"`
	StoreID     int            `gorm:"column:store_id;index:idx_alert_store_created,priority:1;not null"`
	Type        string         `gorm:"column:type;not null"`
	Level       string         `gorm:"column:level;not null"`
	Message     string         `gorm:"column:message"`
	Details     datatypes.JSON `gorm:"column:details"`
	ScriptURL   string         `gorm:"column:script_url"`
	PageURL     string         `gorm:"column:page_url"`
	DedupKey    *string        `gorm:"column:dedup_key;uniqueIndex:idx_alert_dedup"`
	IsResolved  bool           `gorm:"column:is_resolved"`
	ResolvedBy  string         `gorm:"column:resolved_by"`
	ResolvedAt  *time.Time     `gorm:"column:resolved_at"`
	EmailSent   bool           `gorm:"column:email_sent"`
	EmailSentAt *time.Time     `gorm:"column:email_sent_at"`
	Occurrences int            `gorm:"column:occurrences"`
	LastSeenAt  time.Time      `gorm:"column:last_seen_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;index:idx_alert_store_created,priority:2"`
}

func (alertRow) TableName() string { return "compliance_alerts" }

type jobRow struct {
	ID         string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	StoreID    int        `gorm:"column:store_id;index:idx_job_page,priority:1;not null"`
	PageURL    string     `gorm:"column:page_url;index:idx_job_page,priority:2;not null"`
	CheckType  string     `gorm:"column:check_type"`
	Status     string     `gorm:"column:status;index:idx_job_status;not null"`
	Attempts   int        `gorm:"column:attempts"`
	LogID      string     `gorm:"column:log_id"`
	LastError  string     `gorm:"column:last_error"`
	QueuedAt   time.Time  `gorm:"column:queued_at;not null"`
	StartedAt  *time.Time `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

func (jobRow) TableName() string { return "scan_jobs" }

func utc(t time.Time) time.Time { return t.UTC() }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func scriptFromDomain(s *domain.AuthorizedScript) scriptRow {
	return scriptRow{
		ID:             s.ID,
		StoreID:        s.StoreID,
		URL:            s.URL,
		Domain:         s.Domain,
		Hash:           s.Hash,
		HashAlgorithm:  s.HashAlgorithm,
		Purpose:        s.Purpose,
		Justification:  s.Justification,
		RiskLevel:      int(s.RiskLevel),
		IsActive:       s.IsActive,
		Source:         string(s.Source),
		AuthorizedBy:   s.AuthorizedBy,
		AuthorizedAt:   utc(s.AuthorizedAt),
		LastVerifiedAt: utc(s.LastVerifiedAt),
	}
}

func (r scriptRow) toDomain() domain.AuthorizedScript {
	return domain.AuthorizedScript{
		ID:             r.ID,
		StoreID:        r.StoreID,
		URL:            r.URL,
		Domain:         r.Domain,
		Hash:           r.Hash,
		HashAlgorithm:  r.HashAlgorithm,
		Purpose:        r.Purpose,
		Justification:  r.Justification,
		RiskLevel:      domain.RiskLevel(r.RiskLevel),
		IsActive:       r.IsActive,
		Source:         domain.ScriptSource(r.Source),
		AuthorizedBy:   r.AuthorizedBy,
		AuthorizedAt:   r.AuthorizedAt,
		LastVerifiedAt: r.LastVerifiedAt,
	}
}

func logFromDomain(l *domain.MonitoringLog) logRow {
	return logRow{
		ID:                       l.ID,
		StoreID:                  l.StoreID,
		PageURL:                  l.PageURL,
		DetectedScripts:          datatypes.JSONSlice[string](nonNil(l.DetectedScripts)),
		UnauthorizedScripts:      datatypes.JSONSlice[string](nonNil(l.UnauthorizedScripts)),
		Headers:                  datatypes.NewJSONType(l.Headers),
		TotalScriptsFound:        l.TotalScriptsFound,
		AuthorizedScriptsCount:   l.AuthorizedScriptsCount,
		UnauthorizedScriptsCount: l.UnauthorizedScriptsCount,
		HasUnauthorizedScripts:   l.HasUnauthorizedScripts,
		CheckType:                string(l.CheckType),
		AlertSent:                l.AlertSent,
		FetchError:               l.FetchError,
		DurationMs:               l.DurationMs,
		CheckedAt:                utc(l.CheckedAt),
	}
}

func (r logRow) toDomain() domain.MonitoringLog {
	return domain.MonitoringLog{
		ID:                       r.ID,
		StoreID:                  r.StoreID,
		PageURL:                  r.PageURL,
		DetectedScripts:          []string(r.DetectedScripts),
		UnauthorizedScripts:      []string(r.UnauthorizedScripts),
		Headers:                  r.Headers.Data(),
		TotalScriptsFound:        r.TotalScriptsFound,
		AuthorizedScriptsCount:   r.AuthorizedScriptsCount,
		UnauthorizedScriptsCount: r.UnauthorizedScriptsCount,
		HasUnauthorizedScripts:   r.HasUnauthorizedScripts,
		CheckType:                domain.CheckType(r.CheckType),
		AlertSent:                r.AlertSent,
		FetchError:               r.FetchError,
		DurationMs:               r.DurationMs,
		CheckedAt:                r.CheckedAt,
	}
}

func alertFromDomain(a *domain.ComplianceAlert) alertRow {
	row := alertRow{
		ID:          a.ID,
		StoreID:     a.StoreID,
		Type:        string(a.Type),
		Level:       string(a.Level),
		Message:     a.Message,
		Details:     datatypes.JSON(a.Details),
		ScriptURL:   a.ScriptURL,
		PageURL:     a.PageURL,
		IsResolved:  a.IsResolved,
		ResolvedBy:  a.ResolvedBy,
		ResolvedAt:  utcPtr(a.ResolvedAt),
		EmailSent:   a.EmailSent,
		EmailSentAt: utcPtr(a.EmailSentAt),
		Occurrences: a.Occurrences,
		LastSeenAt:  utc(a.LastSeenAt),
		CreatedAt:   utc(a.CreatedAt),
	}
	if !a.IsResolved {
		key := a.DedupKey()
		row.DedupKey = &key
	}
	return row
}

func (r alertRow) toDomain() domain.ComplianceAlert {
	return domain.ComplianceAlert{
		ID:          r.ID,
		StoreID:     r.StoreID,
		Type:        domain.AlertType(r.Type),
		Level:       domain.AlertLevel(r.Level),
		Message:     r.Message,
		Details:     json.RawMessage(r.Details),
		ScriptURL:   r.ScriptURL,
		PageURL:     r.PageURL,
		IsResolved:  r.IsResolved,
		ResolvedBy:  r.ResolvedBy,
		ResolvedAt:  r.ResolvedAt,
		EmailSent:   r.EmailSent,
		EmailSentAt: r.EmailSentAt,
		Occurrences: r.Occurrences,
		LastSeenAt:  r.LastSeenAt,
		CreatedAt:   r.CreatedAt,
	}
}

func jobFromDomain(j *domain.ScanJob) jobRow {
	return jobRow{
		ID:         j.ID,
		StoreID:    j.StoreID,
		PageURL:    j.PageURL,
		CheckType:  string(j.CheckType),
		Status:     string(j.Status),
		Attempts:   j.Attempts,
		LogID:      j.LogID,
		LastError:  j.LastError,
		QueuedAt:   utc(j.QueuedAt),
		StartedAt:  utcPtr(j.StartedAt),
		FinishedAt: utcPtr(j.FinishedAt),
	}
}

func (r jobRow) toDomain() domain.ScanJob {
	return domain.ScanJob{
		ID:         r.ID,
		StoreID:    r.StoreID,
		PageURL:    r.PageURL,
		CheckType:  domain.CheckType(r.CheckType),
		Status:     domain.JobStatus(r.Status),
		Attempts:   r.Attempts,
		LogID:      r.LogID,
		LastError:  r.LastError,
		QueuedAt:   r.QueuedAt,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
