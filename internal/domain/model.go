package domain

import (
	"encoding/json"
	"time"
)

// Core domain models used internally. Storage adapters map these onto their
// own row types; keep these decoupled from any driver.

type RiskLevel int

const (
	RiskLow    RiskLevel = 1
	RiskMedium RiskLevel = 2
	RiskHigh   RiskLevel = 3
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// ScriptSource categorises where an authorized script comes from.
type ScriptSource string

const (
	SourceInternal       ScriptSource = "internal"
	SourceThirdParty     ScriptSource = "third-party"
	SourcePaymentGateway ScriptSource = "payment-gateway"
	SourceAnalytics      ScriptSource = "analytics"
	SourceMarketing      ScriptSource = "marketing"
)

// AuthorizedScript is one allow-list entry. URL is unique within a store.
type AuthorizedScript struct {
	ID             string
	StoreID        int
	URL            string
	Domain         string
	Hash           string // base64 digest, without the algorithm prefix
	HashAlgorithm  string
	Purpose        string
	Justification  string
	RiskLevel      RiskLevel
	IsActive       bool
	Source         ScriptSource
	AuthorizedBy   string
	AuthorizedAt   time.Time
	LastVerifiedAt time.Time
}

type CheckType string

const (
	CheckScheduled    CheckType = "scheduled"
	CheckManual       CheckType = "manual"
	CheckPostOrder    CheckType = "post-order"
	CheckClientReport CheckType = "client-report"
)

// MonitoringLog is the immutable record of one page scan. AlertSent is the
// only field written after insertion.
type MonitoringLog struct {
	ID                       string
	StoreID                  int
	PageURL                  string
	DetectedScripts          []string
	UnauthorizedScripts      []string
	Headers                  map[string]string
	TotalScriptsFound        int
	AuthorizedScriptsCount   int
	UnauthorizedScriptsCount int
	HasUnauthorizedScripts   bool
	CheckType                CheckType
	AlertSent                bool
	FetchError               string
	DurationMs               int64
	CheckedAt                time.Time
}

type AlertType string

const (
	AlertUnauthorizedScript AlertType = "unauthorized-script"
	AlertCSPViolation       AlertType = "csp-violation"
	AlertIntegrityFailure   AlertType = "integrity-failure"
)

// Label is the human form used in reports and emails.
func (t AlertType) Label() string {
	switch t {
	case AlertUnauthorizedScript:
		return "Unauthorized Scripts"
	case AlertCSPViolation:
		return "CSP Violations"
	case AlertIntegrityFailure:
		return "Integrity Failures"
	default:
		if t == "" {
			return "Unknown"
		}
		return string(t)
	}
}

type AlertLevel string

const (
	LevelInfo     AlertLevel = "info"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
)

// Integrity failure sub-cases carried in the alert details blob.
const (
	IntegrityMissingSRI       = "missing-sri"
	IntegrityHashMismatch     = "hash-mismatch"
	IntegrityInvalidSRIFormat = "invalid-sri-format"
)

// ComplianceAlert is a deduplicated compliance event. At most one unresolved
// alert exists per (StoreID, Type, ScriptURL); ScriptURL is empty for
// page-wide events.
type ComplianceAlert struct {
	ID          string
	StoreID     int
	Type        AlertType
	Level       AlertLevel
	Message     string
	Details     json.RawMessage
	ScriptURL   string
	PageURL     string
	IsResolved  bool
	ResolvedBy  string
	ResolvedAt  *time.Time
	EmailSent   bool
	EmailSentAt *time.Time
	Occurrences int
	LastSeenAt  time.Time
	CreatedAt   time.Time
}

// DedupKey identifies the unresolved-alert slot this alert occupies.
func (a ComplianceAlert) DedupKey() string {
	return AlertDedupKey(a.StoreID, a.Type, a.ScriptURL)
}

func AlertDedupKey(storeID int, t AlertType, scriptURL string) string {
	b, _ := json.Marshal([]any{storeID, string(t), scriptURL})
	return string(b)
}

// SRIValidationResult is the outcome of checking one script against a
// declared integrity value.
type SRIValidationResult struct {
	ScriptURL    string `json:"scriptUrl"`
	IsValid      bool   `json:"isValid"`
	CurrentHash  string `json:"currentHash,omitempty"`
	ExpectedHash string `json:"expectedHash,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ComplianceReport is a read-side projection; it is never persisted.
type ComplianceReport struct {
	StoreID                       int                `json:"storeId" yaml:"storeId"`
	From                          *time.Time         `json:"from,omitempty" yaml:"from,omitempty"`
	To                            *time.Time         `json:"to,omitempty" yaml:"to,omitempty"`
	TotalScriptsMonitored         int                `json:"totalScriptsMonitored" yaml:"totalScriptsMonitored"`
	AuthorizedScriptsCount        int                `json:"authorizedScriptsCount" yaml:"authorizedScriptsCount"`
	UnauthorizedScriptsCount      int                `json:"unauthorizedScriptsCount" yaml:"unauthorizedScriptsCount"`
	ComplianceScore               float64            `json:"complianceScore" yaml:"complianceScore"`
	TotalChecksPerformed          int                `json:"totalChecksPerformed" yaml:"totalChecksPerformed"`
	FailedChecks                  int                `json:"failedChecks" yaml:"failedChecks"`
	AlertsGenerated               int                `json:"alertsGenerated" yaml:"alertsGenerated"`
	LastCheckDate                 time.Time          `json:"lastCheckDate" yaml:"lastCheckDate"`
	AverageScanDuration           time.Duration      `json:"averageScanDurationNs" yaml:"averageScanDuration"`
	MostCommonUnauthorizedScripts []string           `json:"mostCommonUnauthorizedScripts" yaml:"mostCommonUnauthorizedScripts"`
	TopUnauthorizedDomains        []DomainCount      `json:"topUnauthorizedDomains,omitempty" yaml:"topUnauthorizedDomains,omitempty"`
	AlertsByType                  map[AlertType]int  `json:"alertsByType,omitempty" yaml:"alertsByType,omitempty"`
	OpenAlerts                    int                `json:"openAlerts" yaml:"openAlerts"`
	History                       []DailyCompliance  `json:"history,omitempty" yaml:"history,omitempty"`
	RiskBreakdown                 map[string]int     `json:"riskBreakdown,omitempty" yaml:"riskBreakdown,omitempty"`
}

type DomainCount struct {
	Domain string `json:"domain" yaml:"domain"`
	Count  int    `json:"count" yaml:"count"`
}

type DailyCompliance struct {
	Date                time.Time `json:"date" yaml:"date"`
	Checks              int       `json:"checks" yaml:"checks"`
	IssuesFound         int       `json:"issuesFound" yaml:"issuesFound"`
	TotalScripts        int       `json:"totalScripts" yaml:"totalScripts"`
	AuthorizedScripts   int       `json:"authorizedScripts" yaml:"authorizedScripts"`
	UnauthorizedScripts int       `json:"unauthorizedScripts" yaml:"unauthorizedScripts"`
	ComplianceScore     float64   `json:"complianceScore" yaml:"complianceScore"`
}

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ScanJob is one queued page check.
type ScanJob struct {
	ID         string
	StoreID    int
	PageURL    string
	CheckType  CheckType
	Status     JobStatus
	Attempts   int
	LogID      string
	LastError  string
	QueuedAt   time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Store identifies a monitored storefront.
type Store struct {
	ID   int
	Name string
	URL  string
}

// StoreSettings is the per-store configuration consumed read-only by the core.
type StoreSettings struct {
	IsEnabled              bool
	MonitoredPages         []string
	MaxAlertFrequencyHours int
	EnableEmailAlerts      bool
	AlertEmail             string
	CSPPolicy              string
	EnableSRIValidation    bool
	LogRetentionDays       int
	AlertRetentionDays     int
	ExpiredScriptDays      int
}
