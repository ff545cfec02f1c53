package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"scriptguard/internal/config"
	"scriptguard/internal/domain"
)

type sent struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestSMTP(t *testing.T, fail error) (*SMTP, *[]sent) {
	t.Helper()
	var out []sent
	s := NewSMTP(config.SMTPConfig{Host: "mail.example.com", Port: 587, Username: "u", Password: "p", From: "guard@example.com"}, nil)
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if fail != nil {
			return fail
		}
		out = append(out, sent{addr, from, to, string(msg)})
		return nil
	}
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s, &out
}

func TestSMTP_UnauthorizedAlert(t *testing.T) {
	s, out := newTestSMTP(t, nil)
	log := domain.MonitoringLog{
		PageURL:                  "https://shop.example.com/checkout",
		UnauthorizedScripts:      []string{"https://evil.example/x.js", "inline-script-2d711642b726b044"},
		UnauthorizedScriptsCount: 2,
		TotalScriptsFound:        5,
		AuthorizedScriptsCount:   3,
		CheckType:                domain.CheckScheduled,
		CheckedAt:                time.Date(2024, 3, 1, 11, 59, 0, 0, time.UTC),
	}
	require.NoError(t, s.SendUnauthorizedScriptAlert(context.Background(), "sec@example.com", log, "Demo Shop"))
	require.Len(t, *out, 1)
	m := (*out)[0]
	assert.Equal(t, "mail.example.com:587", m.addr)
	assert.Equal(t, []string{"sec@example.com"}, m.to)
	assert.Contains(t, m.msg, "Subject: [Demo Shop] Unauthorized scripts detected on https://shop.example.com/checkout\r\n")
	assert.Contains(t, m.msg, "Date: Fri, 01 Mar 2024 12:00:00 +0000\r\n")
	assert.Contains(t, m.msg, "  - https://evil.example/x.js\r\n")
	assert.Contains(t, m.msg, "  - inline-script-2d711642b726b044\r\n")
	assert.Contains(t, m.msg, "5 found, 3 authorized")
}

func TestSMTP_OtherKinds(t *testing.T) {
	s, out := newTestSMTP(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendCSPViolationAlert(ctx, "a@example.com", `{"blockedURI":"https://evil.example"}`, "Shop"))
	require.NoError(t, s.SendScriptChangeAlert(ctx, "a@example.com", "https://cdn.example.com/a.js", "Shop"))
	require.NoError(t, s.SendExpiredScriptsAlert(ctx, "a@example.com", []domain.AuthorizedScript{
		{URL: "https://cdn.example.com/a.js", RiskLevel: domain.RiskHigh, LastVerifiedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}, "Shop"))
	require.Len(t, *out, 3)
	assert.Contains(t, (*out)[0].msg, `{"blockedURI":"https://evil.example"}`)
	assert.Contains(t, (*out)[1].msg, "Script: https://cdn.example.com/a.js")
	assert.Contains(t, (*out)[2].msg, "Subject: [Shop] 1 authorized script(s) due for review")
	assert.Contains(t, (*out)[2].msg, "last verified 2024-01-02, risk High")
}

func TestSMTP_Errors(t *testing.T) {
	s, _ := newTestSMTP(t, errors.New("relay down"))
	err := s.SendScriptChangeAlert(context.Background(), "a@example.com", "https://x", "Shop")
	assert.ErrorContains(t, err, "relay down")

	err = s.SendScriptChangeAlert(context.Background(), "", "https://x", "Shop")
	assert.ErrorContains(t, err, "no recipient")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SendScriptChangeAlert(ctx, "a@example.com", "https://x", "Shop"), context.Canceled)
}

func TestLog_WritesRenderedMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLog(zap.New(core))
	require.NoError(t, n.SendScriptChangeAlert(context.Background(), "a@example.com", "https://cdn.example.com/a.js", "Shop"))
	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a@example.com", fields["to"])
	assert.True(t, strings.Contains(fields["body"].(string), "https://cdn.example.com/a.js"))
}

func TestNew_PicksGateway(t *testing.T) {
	_, isLog := New(config.SMTPConfig{}, nil).(*Log)
	assert.True(t, isLog)
	_, isSMTP := New(config.SMTPConfig{Host: "mail", Port: 25, From: "x@example.com"}, nil).(*SMTP)
	assert.True(t, isSMTP)
}
