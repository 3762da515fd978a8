package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/agency-leads/internal/infra/queue"
)

//go:embed templates/*.html
var templateFS embed.FS

var leadAlertTemplate = template.Must(template.ParseFS(templateFS, "templates/lead_alert.html"))

type EmailSender struct {
	cfg    Config
	dialer messageSender
	logger *zap.Logger
}

func NewEmailSender(cfg Config, logger *zap.Logger) *EmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &EmailSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		logger: logger,
	}
}

func (s *EmailSender) Configured() bool {
	return s.cfg.Host != "" && s.cfg.SalesTo != "" && s.cfg.From != ""
}

// SendLeadAlert mails a hot lead to the sales inbox. Without SMTP settings it logs and returns nil.
func (s *EmailSender) SendLeadAlert(p queue.LeadAlertPayload) error {
	if !s.Configured() {
		s.logger.Info("smtp not configured, skipping lead alert", zap.String("lead_id", p.LeadID))
		return nil
	}

	body, err := RenderLeadAlert(p)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.SalesTo)
	if p.Email != "" {
		m.SetHeader("Reply-To", p.Email)
	}
	m.SetHeader("Subject", alertSubject(p))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return eris.Wrap(err, "mail: send lead alert")
	}

	s.logger.Info("lead alert sent", zap.String("lead_id", p.LeadID), zap.String("to", s.cfg.SalesTo))
	return nil
}

func RenderLeadAlert(p queue.LeadAlertPayload) (string, error) {
	var body bytes.Buffer
	if err := leadAlertTemplate.Execute(&body, p); err != nil {
		return "", eris.Wrap(err, "mail: render lead alert")
	}
	return body.String(), nil
}

func alertSubject(p queue.LeadAlertPayload) string {
	who := p.Name
	if who == "" {
		who = p.Email
	}
	if who == "" {
		who = p.Phone
	}
	return fmt.Sprintf("%s lead: %s (%d/100)", p.QualificationLevel, who, p.LeadScore)
}
