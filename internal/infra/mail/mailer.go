// Package mail sends the transactional emails of the registration flow
// over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"

	"fidelity/config"
	"fidelity/internal/domain/service"

	gomail "github.com/wneessen/go-mail"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

type smtpMailer struct {
	cfg       *config.SMTPConfig
	templates *template.Template
	logger    *slog.Logger
}

// NewMailer creates the SMTP mailer with the embedded HTML templates.
func NewMailer(cfg *config.Config, logger *slog.Logger) (service.Mailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mail templates")
	}

	return &smtpMailer{
		cfg:       cfg.SMTP,
		templates: templates,
		logger:    logger,
	}, nil
}

type templateData struct {
	Name string
	Link string
	Code string
}

func (m *smtpMailer) SendVerification(ctx context.Context, email, name, link string) error {
	body, err := m.render("verification.html", templateData{Name: name, Link: link})
	if err != nil {
		return err
	}

	return m.send(ctx, email, name, "Complete your registration - Suns Fidelity Card", body, nil, "")
}

func (m *smtpMailer) SendProfileAccess(ctx context.Context, email, name, link string) error {
	body, err := m.render("profile_access.html", templateData{Name: name, Link: link})
	if err != nil {
		return err
	}

	return m.send(ctx, email, name, "Access your personal area - Suns Fidelity Card", body, nil, "")
}

func (m *smtpMailer) SendWelcome(ctx context.Context, email, name, identityCode string, card []byte) error {
	body, err := m.render("welcome.html", templateData{Name: name, Code: identityCode})
	if err != nil {
		return err
	}

	subject := "Welcome to Suns, " + name + " - Your Fidelity Card is active"

	return m.send(ctx, email, name, subject, body, card, identityCode)
}

func (m *smtpMailer) render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render template %s", name)
	}

	return buf.String(), nil
}

func (m *smtpMailer) send(ctx context.Context, email, name, subject, htmlBody string, attachment []byte, attachmentName string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.SenderName, m.cfg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	if err := msg.AddToFormat(name, email); err != nil {
		return errors.Wrap(err, "invalid recipient address")
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if len(attachment) > 0 && attachmentName != "" {
		msg.AttachReader("SunsFidelityCard_"+attachmentName+".png", bytes.NewReader(attachment))
	}

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Sender),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrapf(err, "failed to send mail to %s", email)
	}

	m.logger.Info("Mail sent", slog.String("to", email), slog.String("subject", subject))

	return nil
}
