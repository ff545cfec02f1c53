package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"scriptguard/internal/config"
	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/ports"
)

var (
	_ ports.Notifier = (*SMTP)(nil)
	_ ports.Notifier = (*Log)(nil)
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends plain-text alert emails through a relay.
type SMTP struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   sendFunc
	now    func() time.Time
	logger *zap.Logger
}

func NewSMTP(cfg config.SMTPConfig, logger *zap.Logger) *SMTP {
	s := &SMTP{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:   cfg.From,
		send:   smtp.SendMail,
		now:    time.Now,
		logger: logging.OrNop(logger),
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

func (s *SMTP) SendUnauthorizedScriptAlert(ctx context.Context, email string, log domain.MonitoringLog, storeName string) error {
	return s.deliver(ctx, func() (Message, error) { return unauthorizedMessage(email, log, storeName) })
}

func (s *SMTP) SendCSPViolationAlert(ctx context.Context, email, detailsJSON, storeName string) error {
	return s.deliver(ctx, func() (Message, error) { return cspMessage(email, detailsJSON, storeName) })
}

func (s *SMTP) SendScriptChangeAlert(ctx context.Context, email, scriptURL, storeName string) error {
	return s.deliver(ctx, func() (Message, error) { return changeMessage(email, scriptURL, storeName) })
}

func (s *SMTP) SendExpiredScriptsAlert(ctx context.Context, email string, scripts []domain.AuthorizedScript, storeName string) error {
	return s.deliver(ctx, func() (Message, error) { return expiredMessage(email, scripts, storeName) })
}

func (s *SMTP) deliver(ctx context.Context, build func() (Message, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := build()
	if err != nil {
		return err
	}
	if m.To == "" {
		return fmt.Errorf("send %q: no recipient", m.Subject)
	}
	if err := s.send(s.addr, s.auth, s.from, []string{m.To}, s.format(m)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	s.logger.Info("alert email sent", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}

func (s *SMTP) format(m Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// Log writes alert emails to the logger instead of sending them. It is used
// when no SMTP relay is configured.
type Log struct{ logger *zap.Logger }

func NewLog(logger *zap.Logger) *Log { return &Log{logger: logging.OrNop(logger)} }

func (l *Log) SendUnauthorizedScriptAlert(ctx context.Context, email string, log domain.MonitoringLog, storeName string) error {
	return l.write(unauthorizedMessage(email, log, storeName))
}

func (l *Log) SendCSPViolationAlert(ctx context.Context, email, detailsJSON, storeName string) error {
	return l.write(cspMessage(email, detailsJSON, storeName))
}

func (l *Log) SendScriptChangeAlert(ctx context.Context, email, scriptURL, storeName string) error {
	return l.write(changeMessage(email, scriptURL, storeName))
}

func (l *Log) SendExpiredScriptsAlert(ctx context.Context, email string, scripts []domain.AuthorizedScript, storeName string) error {
	return l.write(expiredMessage(email, scripts, storeName))
}

func (l *Log) write(m Message, err error) error {
	if err != nil {
		return err
	}
	l.logger.Info("alert email (not sent)", zap.String("to", m.To), zap.String("subject", m.Subject),
		zap.String("body", m.Body))
	return nil
}

// New picks the SMTP gateway when a relay is configured and the log gateway
// otherwise.
func New(cfg config.SMTPConfig, logger *zap.Logger) ports.Notifier {
	if cfg.Enabled() {
		return NewSMTP(cfg, logger)
	}
	return NewLog(logger)
}
