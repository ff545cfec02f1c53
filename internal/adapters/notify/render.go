// Package notify delivers alert emails over SMTP or to the log.
package notify

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"scriptguard/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var messages = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Body    string
}

func render(kind, to string, data any) (Message, error) {
	var subject, body bytes.Buffer
	if err := messages.ExecuteTemplate(&subject, kind+".subject", data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := messages.ExecuteTemplate(&body, kind+".body", data); err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", kind, err)
	}
	return Message{To: to, Subject: strings.TrimSpace(subject.String()), Body: body.String()}, nil
}

func unauthorizedMessage(to string, log domain.MonitoringLog, storeName string) (Message, error) {
	return render("unauthorized", to, struct {
		StoreName string
		Log       domain.MonitoringLog
	}{storeName, log})
}

func cspMessage(to, detailsJSON, storeName string) (Message, error) {
	return render("csp", to, struct{ StoreName, Details string }{storeName, detailsJSON})
}

func changeMessage(to, scriptURL, storeName string) (Message, error) {
	return render("change", to, struct{ StoreName, ScriptURL string }{storeName, scriptURL})
}

func expiredMessage(to string, scripts []domain.AuthorizedScript, storeName string) (Message, error) {
	return render("expired", to, struct {
		StoreName string
		Scripts   []domain.AuthorizedScript
	}{storeName, scripts})
}
