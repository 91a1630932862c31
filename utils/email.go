package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

// SendStaffCredentials mails a newly created staff member their generated
// password. Delivery runs in the background; failures are logged only and
// never block the request that created the account.
func SendStaffCredentials(email, name, storeName, password string) {
	go func() {
		subject := fmt.Sprintf("Your staff account for %s", storeName)
		body := fmt.Sprintf(`<h2>Welcome aboard, %s!</h2>
<p>A staff account has been created for you at <strong>%s</strong>.</p>
<p>Sign in with this email address and the temporary password below:</p>
<p><strong>%s</strong></p>
<p>Please change your password after your first sign-in.</p>`,
			strings.Split(name, " ")[0], storeName, password)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send staff credentials to %s: %v", email, err)
		}
	}()
}
