package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go-jobseeker-backend/config"

	"gopkg.in/gomail.v2"
)

// EmailService sends transactional mail over SMTP.
type EmailService struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

type ResetCodeEmailData struct {
	Code      string
	ExpiresIn int // minutes
	ResetURL  string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
	}
}

var resetCodeTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Password reset</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .code { font-size: 28px; letter-spacing: 6px; font-weight: bold; padding: 12px; background: #f4f4f4; text-align: center; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <p>Use the code below to reset your password:</p>
        <div class="code">{{.Code}}</div>
        <p>The code expires in {{.ExpiresIn}} minutes.{{if .ResetURL}} You can enter it at <a href="{{.ResetURL}}">{{.ResetURL}}</a>.{{end}}</p>
        <div class="footer">
            <p>If you did not request a reset, you can ignore this email.</p>
        </div>
    </div>
</body>
</html>`))

// RenderResetCode renders the HTML body of the reset-code mail.
func RenderResetCode(data ResetCodeEmailData) (string, error) {
	var body bytes.Buffer
	if err := resetCodeTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

// SendResetCode mails a password reset code to the given address.
func (s *EmailService) SendResetCode(ctx context.Context, to, code string, ttl time.Duration, resetURL string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service not configured")
	}

	body, err := RenderResetCode(ResetCodeEmailData{
		Code:      code,
		ExpiresIn: int(ttl.Minutes()),
		ResetURL:  resetURL,
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your password reset code")
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
