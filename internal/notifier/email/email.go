// Package email implements an SMTP-based email notifier
package email

import (
	"context"
	"fmt"
	"html"
	"math"
	"net/smtp"
	"strings"
	"time"

	"github.com/newthinker/taengine/internal/analysis"
	"github.com/newthinker/taengine/internal/notifier"
)

// Config configures an Email notifier.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email implements notifier.Notifier for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	send     sendFunc
	now      func() time.Time
}

var _ notifier.Notifier = (*Email)(nil)

// New creates a new Email notifier
func New(cfg Config) (*Email, error) {
	if cfg.Host == "" || cfg.From == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("email: host, from, and to are required")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &Email{
		host:     cfg.Host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
		send:     smtp.SendMail,
		now:      time.Now,
	}, nil
}

func (e *Email) Name() string { return "email" }

// Notify sends one HTML digest for the whole batch. smtp.SendMail takes no
// context, so only a context cancelled before sending is honoured.
func (e *Email) Notify(ctx context.Context, summaries []analysis.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("email: %w", err)
	}

	subject := fmt.Sprintf("taengine digest: %d watchlist results", len(summaries))

	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString("<h2>taengine watchlist</h2>")
	sb.WriteString(fmt.Sprintf("<p>Generated at: %s</p>", e.now().UTC().Format("2006-01-02 15:04:05")))
	sb.WriteString("<hr>")

	for _, s := range summaries {
		sb.WriteString(formatSummaryHTML(s))
		sb.WriteString("<hr>")
	}

	sb.WriteString("</body></html>")

	return e.sendEmail(subject, sb.String())
}

func formatSummaryHTML(s analysis.Summary) string {
	var sb strings.Builder

	sb.WriteString(`<div style="margin: 10px 0;">`)
	sb.WriteString(fmt.Sprintf("<h3>%s %s</h3>", html.EscapeString(s.Symbol), html.EscapeString(s.Interval)))
	if math.IsNaN(s.Close) || math.IsInf(s.Close, 0) {
		sb.WriteString("<p><strong>Close:</strong> n/a</p>")
	} else {
		sb.WriteString(fmt.Sprintf("<p><strong>Close:</strong> %.4f</p>", s.Close))
	}

	sb.WriteString("<table>")
	for _, name := range notifier.SortedValueNames(s) {
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%.4f</td></tr>", html.EscapeString(name), s.Values[name]))
	}
	sb.WriteString("</table>")

	if !s.Time.IsZero() {
		sb.WriteString(fmt.Sprintf("<p><small>%s</small></p>", s.Time.UTC().Format("2006-01-02 15:04:05")))
	}
	sb.WriteString("</div>")

	return sb.String()
}

func (e *Email) sendEmail(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		e.from,
		strings.Join(e.to, ","),
		subject,
		body,
	)

	if err := e.send(addr, auth, e.from, e.to, []byte(msg)); err != nil {
		return fmt.Errorf("email: sending to %s: %w", addr, err)
	}
	return nil
}
