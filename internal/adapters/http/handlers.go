package httpadapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	api "scriptguard/internal/api"
	"scriptguard/internal/domain"
	"scriptguard/internal/services/compliance"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/scanner"
	"scriptguard/internal/workers/scanrunner"
)

func (s *Server) GetHealthz(ctx context.Context, _ api.GetHealthzRequestObject) (api.GetHealthzResponseObject, error) {
	return api.GetHealthz200JSONResponse{Success: true, Status: "ok"}, nil
}

func (s *Server) ValidateScript(ctx context.Context, req api.ValidateScriptRequestObject) (api.ValidateScriptResponseObject, error) {
	scriptURL := strings.TrimSpace(req.Body.ScriptUrl)
	if scriptURL == "" {
		return api.ValidateScript400JSONResponse(fail("scriptUrl is required")), nil
	}
	ok, err := s.Engine.ValidateScript(ctx, req.StoreId, scriptURL)
	if err != nil {
		s.logger.Error("validate script", zap.Error(err))
		return nil, err
	}
	return api.ValidateScript200JSONResponse{Success: true, IsAuthorized: ok}, nil
}

func (s *Server) ValidateScriptWithSRI(ctx context.Context, req api.ValidateScriptWithSRIRequestObject) (api.ValidateScriptWithSRIResponseObject, error) {
	scriptURL := strings.TrimSpace(req.Body.ScriptUrl)
	if scriptURL == "" {
		return api.ValidateScriptWithSRI400JSONResponse(fail("scriptUrl is required")), nil
	}
	res, err := s.Engine.ValidateScriptWithSRI(ctx, req.StoreId, scriptURL, value(req.Body.Integrity))
	if err != nil {
		s.logger.Error("validate script with sri", zap.Error(err))
		return nil, err
	}
	return api.ValidateScriptWithSRI200JSONResponse{
		Success:      true,
		IsAuthorized: res.IsAuthorized,
		HasValidSRI:  res.HasValidSRI,
		SriError:     optional(res.SRIError),
	}, nil
}

func (s *Server) ReportScripts(ctx context.Context, req api.ReportScriptsRequestObject) (api.ReportScriptsResponseObject, error) {
	res, err := s.Engine.ProcessClientReport(ctx, req.StoreId, compliance.ClientReport{
		Scripts:   req.Body.Scripts,
		PageURL:   value(req.Body.PageUrl),
		UserAgent: value(req.Body.UserAgent),
		Timestamp: value(req.Body.Timestamp),
	})
	if err != nil && res.LogID == "" {
		s.logger.Error("process client report", zap.Error(err))
		return nil, err
	}
	if err != nil {
		s.logger.Warn("client report alerting failed", zap.Error(err))
	}
	scripts := res.UnauthorizedScripts
	if scripts == nil {
		scripts = []string{}
	}
	return api.ReportScripts200JSONResponse{
		Success:             true,
		UnauthorizedCount:   res.UnauthorizedCount,
		UnauthorizedScripts: scripts,
		LogId:               optional(res.LogID),
	}, nil
}

func (s *Server) ReportViolation(ctx context.Context, req api.ReportViolationRequestObject) (api.ReportViolationResponseObject, error) {
	a, err := s.Engine.ReportViolation(ctx, req.StoreId, compliance.Violation{
		Type:      req.Body.ViolationType,
		ScriptURL: value(req.Body.ScriptUrl),
		PageURL:   value(req.Body.PageUrl),
		Timestamp: value(req.Body.Timestamp),
		UserAgent: value(req.Body.UserAgent),
	})
	if errors.Is(err, compliance.ErrUnknownViolation) {
		return api.ReportViolation400JSONResponse(fail(err.Error())), nil
	}
	if err != nil {
		s.logger.Error("report violation", zap.Error(err))
		return nil, err
	}
	return api.ReportViolation200JSONResponse(alertCreated(a)), nil
}

func (s *Server) ReportCSPViolation(ctx context.Context, req api.ReportCSPViolationRequestObject) (api.ReportCSPViolationResponseObject, error) {
	v := req.Body.Violation
	a, err := s.Engine.ReportCSPViolation(ctx, req.StoreId, compliance.CSPReport{
		Violation: compliance.CSPViolation{
			BlockedURI:         value(v.BlockedURI),
			ViolatedDirective:  value(v.ViolatedDirective),
			EffectiveDirective: value(v.EffectiveDirective),
			SourceFile:         value(v.SourceFile),
			LineNumber:         value(v.LineNumber),
			ColumnNumber:       value(v.ColumnNumber),
		},
		PageURL:   value(req.Body.PageUrl),
		Timestamp: value(req.Body.Timestamp),
		UserAgent: value(req.Body.UserAgent),
	})
	if err != nil {
		s.logger.Error("report csp violation", zap.Error(err))
		return nil, err
	}
	return api.ReportCSPViolation200JSONResponse(alertCreated(a)), nil
}

// alertCreated carries the new alert id, or duplicate when the finding was
// already tracked.
func alertCreated(a *domain.ComplianceAlert) api.AlertCreatedResponse {
	if a == nil {
		dup := true
		return api.AlertCreatedResponse{Success: true, Duplicate: &dup}
	}
	return api.AlertCreatedResponse{Success: true, AlertId: &a.ID}
}

func (s *Server) GenerateSRI(ctx context.Context, req api.GenerateSRIRequestObject) (api.GenerateSRIResponseObject, error) {
	scriptURL := strings.TrimSpace(req.Body.ScriptUrl)
	if scriptURL == "" {
		return api.GenerateSRI400JSONResponse(fail("scriptUrl is required")), nil
	}
	issue, err := s.Engine.GenerateSRI(ctx, scriptURL, hashing.ParseAlgorithm(value(req.Body.Algorithm)))
	switch {
	case errors.Is(err, compliance.ErrSRINotApplicable):
		return api.GenerateSRI422JSONResponse(fail(err.Error())), nil
	case err != nil:
		s.logger.Warn("generate sri", zap.String("scriptUrl", scriptURL), zap.Error(err))
		return api.GenerateSRI502JSONResponse(fail("could not fetch script")), nil
	}
	return api.GenerateSRI200JSONResponse{Success: true, Integrity: issue.Integrity, Crossorigin: issue.CrossOrigin}, nil
}

func (s *Server) PostScan(ctx context.Context, req api.PostScanRequestObject) (api.PostScanResponseObject, error) {
	checkType := domain.CheckManual
	if value(req.Body.CheckType) == string(domain.CheckPostOrder) {
		checkType = domain.CheckPostOrder
	}
	job, finished, err := s.runScan(ctx, req.StoreId, req.Body.PageUrl, checkType, req.Params.Wait, req.Params.Timeout)
	switch {
	case errors.Is(err, scanner.ErrScanPending):
		return api.PostScan409JSONResponse(fail(err.Error())), nil
	case errors.Is(err, scanner.ErrInvalidPageURL):
		return api.PostScan400JSONResponse(fail(err.Error())), nil
	case err != nil:
		return nil, err
	case finished != nil:
		return api.PostScan200JSONResponse{ScanFinishedJSONResponse: api.ScanFinishedJSONResponse(*finished)}, nil
	}
	return api.PostScan202JSONResponse{ScanQueuedJSONResponse: api.ScanQueuedJSONResponse{Success: true, JobId: job.ID}}, nil
}

// OrderPlaced triggers a post-order check of the store's first monitored
// page, which is the checkout page by default.
func (s *Server) OrderPlaced(ctx context.Context, req api.OrderPlacedRequestObject) (api.OrderPlacedResponseObject, error) {
	page := "/checkout"
	if s.Settings != nil {
		if st, err := s.Settings.Load(ctx, req.StoreId); err == nil && len(st.MonitoredPages) > 0 {
			page = st.MonitoredPages[0]
		}
	}
	job, finished, err := s.runScan(ctx, req.StoreId, page, domain.CheckPostOrder, req.Params.Wait, req.Params.Timeout)
	switch {
	case errors.Is(err, scanner.ErrScanPending):
		return api.OrderPlaced409JSONResponse(fail(err.Error())), nil
	case errors.Is(err, scanner.ErrInvalidPageURL):
		return api.OrderPlaced400JSONResponse(fail(err.Error())), nil
	case err != nil:
		return nil, err
	case finished != nil:
		return api.OrderPlaced200JSONResponse{ScanFinishedJSONResponse: api.ScanFinishedJSONResponse(*finished)}, nil
	}
	return api.OrderPlaced202JSONResponse{ScanQueuedJSONResponse: api.ScanQueuedJSONResponse{Success: true, JobId: job.ID}}, nil
}

// runScan enqueues a check and, when wait is set, processes it inline. The
// result is nil when the job was only queued. A page that could not be
// fetched is reported through Success, not as an error.
func (s *Server) runScan(ctx context.Context, storeID int, page string, checkType domain.CheckType, wait *bool, timeout *int) (*domain.ScanJob, *api.ScanResultResponse, error) {
	job, err := s.Scans.Enqueue(ctx, storeID, page, checkType)
	if err != nil || !value(wait) {
		return job, nil, err
	}

	limit := s.ScanWait
	if t := value(timeout); t > 0 {
		limit = time.Duration(t) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	outcome, err := scanrunner.ProcessInline(ctx, s.Jobs, s.Processor, *job, s.logger)
	res := &api.ScanResultResponse{JobId: job.ID}
	if outcome.Log == nil {
		res.Summary = "check failed"
		if err != nil {
			res.Summary += ": " + err.Error()
		}
		return job, res, nil
	}
	res.Success = outcome.Log.FetchError == ""
	res.Summary = outcome.Summary()
	res.Log = logToAPI(outcome.Log)
	res.Sri = sriToAPI(outcome.SRI)
	return job, res, nil
}

func (s *Server) GetScan(ctx context.Context, req api.GetScanRequestObject) (api.GetScanResponseObject, error) {
	job, err := s.Scans.Status(ctx, req.Id)
	if errors.Is(err, domain.ErrNotFound) {
		return api.GetScan404JSONResponse(fail("scan job not found")), nil
	}
	if err != nil {
		return nil, err
	}
	return api.GetScan200JSONResponse{Success: true, Job: jobToAPI(job)}, nil
}

func (s *Server) GetReport(ctx context.Context, req api.GetReportRequestObject) (api.GetReportResponseObject, error) {
	report, err := s.Engine.GenerateReport(ctx, req.StoreId, req.Params.From, req.Params.To)
	if err != nil {
		s.logger.Error("generate report", zap.Error(err))
		return nil, err
	}
	return api.GetReport200JSONResponse{Success: true, Report: report}, nil
}

func (s *Server) GetCSP(ctx context.Context, req api.GetCSPRequestObject) (api.GetCSPResponseObject, error) {
	policy, err := s.Engine.BuildCSP(ctx, req.StoreId)
	if err != nil {
		s.logger.Error("build csp", zap.Error(err))
		return nil, err
	}
	return api.GetCSP200JSONResponse{Success: true, Policy: policy}, nil
}

func (s *Server) ResolveAlert(ctx context.Context, req api.ResolveAlertRequestObject) (api.ResolveAlertResponseObject, error) {
	resolvedBy := strings.TrimSpace(req.Body.ResolvedBy)
	if resolvedBy == "" {
		return api.ResolveAlert400JSONResponse(fail("resolvedBy is required")), nil
	}
	a, err := s.Alerts.Resolve(ctx, req.Id, resolvedBy)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return api.ResolveAlert409JSONResponse(fail("alert not found or already resolved")), nil
	}
	return api.ResolveAlert200JSONResponse{Success: true, Alert: alertToAPI(a)}, nil
}
