// Package notify emails high-risk screening cases to a compliance inbox.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"github.com/joelkehle/sanctionguard/internal/platform/config"
	"github.com/joelkehle/sanctionguard/internal/screening"
)

type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	cfg    config.SMTPConfig
	sender Sender
	logger *zap.Logger
}

// NewMailer returns nil when SMTP is not fully configured.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	if !cfg.Enabled() {
		return nil
	}
	dialer := gomail.NewDialer(cfg.Server, cfg.Port, cfg.User, cfg.Pass)
	dialer.Timeout = 10 * time.Second
	return &Mailer{cfg: cfg, sender: dialer, logger: logger}
}

type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// NotifyFlagged sends one alert for rec. A nil Mailer is a no-op.
func (m *Mailer) NotifyFlagged(_ context.Context, rec screening.CaseRecord) error {
	if m == nil {
		return nil
	}
	msg := RenderAlert(rec)

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", m.cfg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	gm.AddAlternative("text/html", msg.HTML)

	if err := m.sender.DialAndSend(gm); err != nil {
		return fmt.Errorf("send alert for case %s: %w", rec.ID, err)
	}
	m.logger.Info("alert sent", zap.String("case_id", rec.ID), zap.String("subject", msg.Subject))
	return nil
}

func RenderAlert(rec screening.CaseRecord) RenderedMessage {
	matchName := ""
	if rec.Match != nil {
		matchName = rec.Match.Name
	}
	label, confidence, reasoning := screening.NoVerdict, 0, rec.Message
	if rec.Verdict != nil {
		label, confidence, reasoning = string(rec.Verdict.Label), rec.Verdict.Confidence, rec.Verdict.Reasoning
	}

	subject := fmt.Sprintf("SanctionGuard Alert: %s - %s", rec.Query, label)

	var text strings.Builder
	fmt.Fprintf(&text, "Case ID: %s\n", rec.ID)
	fmt.Fprintf(&text, "Entity: %s\n", rec.Query)
	fmt.Fprintf(&text, "Country: %s\n", rec.Country)
	fmt.Fprintf(&text, "Match: %s (%d%%)\n", matchName, rec.ScorePercent())
	fmt.Fprintf(&text, "Verdict: %s (%d%%)\n", label, confidence)
	fmt.Fprintf(&text, "Date: %s\n\n", rec.CreatedAt.Format("02 Jan 2006 3:04 PM"))
	fmt.Fprintf(&text, "Reasoning:\n\t%s\n", reasoning)

	var h strings.Builder
	h.WriteString("<h2 style='color:#dc2626'>" + html.EscapeString(label) + fmt.Sprintf(" (%d%%)", confidence) + "</h2>")
	h.WriteString("<table>")
	for _, row := range [][2]string{
		{"Case ID", rec.ID},
		{"Entity", rec.Query},
		{"Country", rec.Country},
		{"Match", fmt.Sprintf("%s (%d%%)", matchName, rec.ScorePercent())},
	} {
		h.WriteString("<tr><th align='left'>" + row[0] + "</th><td>" + html.EscapeString(row[1]) + "</td></tr>")
	}
	h.WriteString("</table><p>" + html.EscapeString(reasoning) + "</p>")

	return RenderedMessage{Subject: subject, Text: text.String(), HTML: h.String()}
}
