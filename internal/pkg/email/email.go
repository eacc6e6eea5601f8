package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/assistenzwerk/timesheet-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending workflow notifications.
// Callers treat sends as fire and forget, failures are logged upstream.
type EmailService interface {
	SendRecipientSignRequest(to, recipientName, sheetFileName string, month, year int, signLink, expiresAt string) error
	SendCompletionNotice(to, sheetFileName string, month, year int) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

type signRequestEmailData struct {
	RecipientName string
	SheetFileName string
	Period        string
	SignLink      string
	ExpiresAt     string
}

// SendRecipientSignRequest asks the care recipient to counter-sign after
// all employees have signed.
func (s *emailServiceImpl) SendRecipientSignRequest(to, recipientName, sheetFileName string, month, year int, signLink, expiresAt string) error {
	data := signRequestEmailData{
		RecipientName: recipientName,
		SheetFileName: sheetFileName,
		Period:        fmt.Sprintf("%02d/%d", month, year),
		SignLink:      signLink,
		ExpiresAt:     expiresAt,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "sign_request.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("Stundennachweis %02d/%d: Unterschrift erforderlich", month, year)
	return s.sendHTML(to, subject, body.String())
}

type completionEmailData struct {
	SheetFileName string
	Period        string
}

// SendCompletionNotice informs the admin inbox that a submission reached
// its terminal state.
func (s *emailServiceImpl) SendCompletionNotice(to, sheetFileName string, month, year int) error {
	data := completionEmailData{
		SheetFileName: sheetFileName,
		Period:        fmt.Sprintf("%02d/%d", month, year),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "completion.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("Stundennachweis %02d/%d vollständig unterschrieben", month, year)
	return s.sendHTML(to, subject, body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s\r\n", from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := smtp.SendMail(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			time.Sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
