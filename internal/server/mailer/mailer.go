// Package mailer sends the account verification email through an SMTP relay.
//
// Delivery is best effort: SendVerificationEmail never returns an error and
// never panics. Every failure is logged and reported in the returned Outcome,
// which callers may inspect but are not required to act on.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/logging"
	mail "github.com/go-mail/mail"
)

// Subject of the verification email.
const Subject = "Verify Your Email - " + common.AppName

// SMTPConfig is the relay and link configuration, built once at startup.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// BaseURL is the public origin verification links point to.
	BaseURL string
	// Timeout bounds one dial-and-send; zero keeps the go-mail default.
	Timeout time.Duration
}

// Configured reports whether both relay credentials are set.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

// VerificationURL returns "{BaseURL}/verify/{userID}".
func (c SMTPConfig) VerificationURL(userID int64) string {
	return strings.TrimRight(c.BaseURL, "/") + "/verify/" + strconv.FormatInt(userID, 10)
}

// Outcome describes what a single SendVerificationEmail call did.
// Attempted is false when no connection to the relay was made.
type Outcome struct {
	Attempted bool
	Delivered bool
	Err       error
}

// OutcomeObserver is notified of every Outcome, e.g. to count deliveries.
type OutcomeObserver interface {
	ObserveVerificationEmail(Outcome)
}

// sender is the part of *mail.Dialer the mailer uses.
type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// newDialer is a seam for tests. The returned dialer refuses to talk to a
// relay without TLS: implicit TLS on port 465, mandatory STARTTLS otherwise.
var newDialer = func(cfg SMTPConfig) sender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.Port == 465 {
		d.SSL = true
	} else {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	return d
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithObserver registers o to receive every Outcome.
func WithObserver(o OutcomeObserver) Option {
	return func(m *Mailer) { m.observer = o }
}

type Mailer struct {
	cfg      SMTPConfig
	logger   logging.Logger
	observer OutcomeObserver
}

func New(cfg SMTPConfig, logger logging.Logger, opts ...Option) *Mailer {
	m := &Mailer{cfg: cfg, logger: logger.With("component", "mailer")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendVerificationEmail emails a verification link for userID to email.
// Without relay credentials it logs and returns without any network activity.
// Otherwise it makes exactly one delivery attempt.
func (m *Mailer) SendVerificationEmail(ctx context.Context, email string, userID int64) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out.Delivered = false
			out.Err = fmt.Errorf("panic while sending email: %v", p)
			m.logger.Error(ctx, "Error sending email", "to", email, "user_id", userID, "error", out.Err)
		}
		if m.observer != nil {
			m.observer.ObserveVerificationEmail(out)
		}
	}()

	if !m.cfg.Configured() {
		m.logger.Warn(ctx, "SMTP credentials not configured. Skipping email send.", "to", email, "user_id", userID)
		return out
	}

	msg, err := m.buildMessage(email, m.cfg.VerificationURL(userID))
	if err != nil {
		m.logger.Error(ctx, "Error building email", "to", email, "user_id", userID, "error", err)
		out.Err = err
		return out
	}

	out.Attempted = true
	if err := newDialer(m.cfg).DialAndSend(msg); err != nil {
		m.logger.Error(ctx, "Failed to send email", "to", email, "user_id", userID,
			"host", m.cfg.Host, "port", m.cfg.Port, "error", err)
		out.Err = err
		return out
	}

	m.logger.Info(ctx, "Verification email sent", "to", email, "user_id", userID)
	out.Delivered = true
	return out
}

func (m *Mailer) buildMessage(to, link string) (*mail.Message, error) {
	body, err := renderVerificationBody(link)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.User, common.AppName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", Subject)
	msg.SetBody("text/html", body)
	return msg, nil
}

var verificationTmpl = template.Must(template.New("verify").Parse(`<html>
<body>
    <h2>Welcome to {{.App}}!</h2>
    <p>Please click the link below to verify your email address:</p>
    <p><a href="{{.Link}}">Verify Email</a></p>
    <p>If the link doesn't work, copy and paste this URL into your browser:</p>
    <p>{{.Link}}</p>
    <p>Best regards,<br>Customer Database Team</p>
</body>
</html>
`))

func renderVerificationBody(link string) (string, error) {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, struct {
		App  string
		Link string
	}{App: common.AppName, Link: link})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
