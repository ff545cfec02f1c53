package reports

import (
	"context"
	"time"

	"scriptguard/internal/domain"
	"scriptguard/internal/ports"
)

// Service loads a window from the repositories and aggregates it.
type Service struct {
	logs    ports.MonitoringLogRepository
	alerts  ports.AlertRepository
	scripts ports.ScriptRepository
}

func New(logs ports.MonitoringLogRepository, alerts ports.AlertRepository, scripts ports.ScriptRepository) *Service {
	return &Service{logs: logs, alerts: alerts, scripts: scripts}
}

func (s *Service) GenerateReport(ctx context.Context, storeID int, from, to *time.Time) (domain.ComplianceReport, error) {
	logs, err := s.logs.ListLogs(ctx, ports.LogFilter{StoreID: storeID, From: from, To: to})
	if err != nil {
		return domain.ComplianceReport{}, domain.NewError(domain.KindPersistence, "load monitoring logs", err)
	}
	alerts, err := s.alerts.ListAlerts(ctx, ports.AlertFilter{StoreID: storeID, From: from, To: to})
	if err != nil {
		return domain.ComplianceReport{}, domain.NewError(domain.KindPersistence, "load alerts", err)
	}
	active := true
	scripts, err := s.scripts.ListScripts(ctx, ports.ScriptFilter{StoreID: storeID, Active: &active})
	if err != nil {
		return domain.ComplianceReport{}, domain.NewError(domain.KindPersistence, "load authorized scripts", err)
	}
	return Aggregate(Input{StoreID: storeID, From: from, To: to, Logs: logs, Alerts: alerts, Scripts: scripts}), nil
}
