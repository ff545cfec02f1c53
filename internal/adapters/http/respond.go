package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	api "scriptguard/internal/api"
	"scriptguard/internal/domain"
)

// apiError carries a status for failures raised outside a typed response,
// e.g. by strict middleware.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func fail(message string) api.Failure {
	return api.Failure{Success: false, Message: message}
}

func writeFail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(fail(message))
}

// requestError answers undecodable bodies and malformed parameters.
func (s *Server) requestError(w http.ResponseWriter, r *http.Request, err error) {
	writeFail(w, http.StatusBadRequest, err.Error())
}

// responseError maps service errors onto the envelope. Persistence failures
// are the only 500s.
func (s *Server) responseError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apiError
	switch {
	case errors.As(err, &ae):
		writeFail(w, ae.status, ae.msg)
	case errors.Is(err, domain.ErrNotFound):
		writeFail(w, http.StatusNotFound, "not found")
	case domain.KindOf(err) == domain.KindConfigurationMissing:
		writeFail(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal error")
	}
}

func bindStoreID(r *http.Request) (int, error) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "storeId", chi.URLParam(r, "storeId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err == nil && id <= 0 {
		err = errors.New("storeId must be positive")
	}
	return id, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func jobToAPI(j *domain.ScanJob) api.ScanJob {
	return api.ScanJob{
		Id:         j.ID,
		StoreId:    j.StoreID,
		PageUrl:    j.PageURL,
		CheckType:  string(j.CheckType),
		Status:     string(j.Status),
		Attempts:   j.Attempts,
		LogId:      optional(j.LogID),
		LastError:  optional(j.LastError),
		QueuedAt:   j.QueuedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}

func alertToAPI(a *domain.ComplianceAlert) api.Alert {
	return api.Alert{
		Id:          a.ID,
		StoreId:     a.StoreID,
		Type:        string(a.Type),
		Level:       string(a.Level),
		Message:     a.Message,
		Details:     a.Details,
		ScriptUrl:   optional(a.ScriptURL),
		PageUrl:     optional(a.PageURL),
		IsResolved:  a.IsResolved,
		ResolvedBy:  optional(a.ResolvedBy),
		ResolvedAt:  a.ResolvedAt,
		EmailSent:   a.EmailSent,
		Occurrences: a.Occurrences,
		CreatedAt:   a.CreatedAt,
	}
}

func logToAPI(l *domain.MonitoringLog) *api.MonitoringLog {
	scripts := l.UnauthorizedScripts
	if scripts == nil {
		scripts = []string{}
	}
	return &api.MonitoringLog{
		Id:                     l.ID,
		PageUrl:                l.PageURL,
		TotalScriptsFound:      l.TotalScriptsFound,
		AuthorizedScriptsCount: l.AuthorizedScriptsCount,
		UnauthorizedScripts:    scripts,
		FetchError:             optional(l.FetchError),
		AlertSent:              l.AlertSent,
		DurationMs:             l.DurationMs,
		CheckedAt:              l.CheckedAt,
	}
}

func sriToAPI(results []domain.SRIValidationResult) *[]api.SRIValidation {
	if len(results) == 0 {
		return nil
	}
	out := make([]api.SRIValidation, len(results))
	for i, r := range results {
		out[i] = api.SRIValidation{
			ScriptUrl:    r.ScriptURL,
			IsValid:      r.IsValid,
			CurrentHash:  optional(r.CurrentHash),
			ExpectedHash: optional(r.ExpectedHash),
			Error:        optional(r.Error),
		}
	}
	return &out
}
