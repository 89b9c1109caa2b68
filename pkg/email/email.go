package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appName  string
	appURL   string
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppName  string
	AppURL   string
}

func NewEmailService(cfg Config) *EmailService {
	return &EmailService{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		appName:  cfg.AppName,
		appURL:   cfg.AppURL,
	}
}

// Enabled reports whether SMTP credentials are configured. Sending is
// skipped entirely when they are not.
func (es *EmailService) Enabled() bool {
	return es != nil && es.host != "" && es.from != ""
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<html>
<body style="font-family: sans-serif;">
  <h2>Welcome to {{.AppName}}, {{.UserName}}!</h2>
  <p>Your account is ready. Start capturing notes, pin the important ones
  and find anything with full-text search.</p>
  <p><a href="{{.AppURL}}">Open {{.AppName}}</a></p>
</body>
</html>`))

// SendWelcomeEmail sends the post-registration greeting.
func (es *EmailService) SendWelcomeEmail(userName, to string) error {
	if !es.Enabled() {
		return nil
	}

	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, map[string]string{
		"UserName": userName,
		"AppName":  es.appName,
		"AppURL":   es.appURL,
	})
	if err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}

	subject := fmt.Sprintf("Welcome to %s!", es.appName)
	message := []byte("From: " + es.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" + body.String())

	auth := smtp.PlainAuth("", es.username, es.password, es.host)
	addr := fmt.Sprintf("%s:%d", es.host, es.port)
	if err := smtp.SendMail(addr, auth, es.from, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
