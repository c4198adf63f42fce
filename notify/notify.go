package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SMTPConfig defines a public type used by stepAuth APIs.
//
// SMTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMTPConfig struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

// SMTPNotifier delivers codes by email over plain SMTP.
type SMTPNotifier struct {
	config SMTPConfig
}

// NewSMTPNotifier describes the newsmtpnotifier operation and its observable behavior.
//
// NewSMTPNotifier may return an error when input validation, dependency calls, or security checks fail.
// NewSMTPNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("smtp addr required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address required")
	}
	return &SMTPNotifier{config: cfg}, nil
}

// SendConfirmationCode describes the sendconfirmationcode operation and its observable behavior.
//
// SendConfirmationCode may return an error when input validation, dependency calls, or security checks fail.
// SendConfirmationCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (n *SMTPNotifier) SendConfirmationCode(ctx context.Context, email, code string) error {
	return n.send(ctx, email, "Confirm your account",
		"Your confirmation code is: "+code)
}

// SendLoginCode describes the sendlogincode operation and its observable behavior.
//
// SendLoginCode may return an error when input validation, dependency calls, or security checks fail.
// SendLoginCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (n *SMTPNotifier) SendLoginCode(ctx context.Context, email, code string) error {
	return n.send(ctx, email, "Your login code",
		"Your login code is: "+code+"\r\nIt expires in a few minutes.")
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("From: " + n.config.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	return smtp.SendMail(n.config.Addr, n.config.Auth, n.config.From, []string{to}, []byte(msg.String()))
}

// LogNotifier writes codes to a standard logger instead of delivering them.
// Intended for development and tests.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier describes the newlognotifier operation and its observable behavior.
//
// NewLogNotifier may return an error when input validation, dependency calls, or security checks fail.
// NewLogNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

// SendConfirmationCode implements the engine's Notifier interface.
func (n *LogNotifier) SendConfirmationCode(ctx context.Context, email, code string) error {
	n.logger.Printf("notify: confirmation code for %s: %s", email, code)
	return nil
}

// SendLoginCode implements the engine's Notifier interface.
func (n *LogNotifier) SendLoginCode(ctx context.Context, email, code string) error {
	n.logger.Printf("notify: login code for %s: %s", email, code)
	return nil
}

// Funcs adapts two functions into a Notifier. Either field may be nil, in
// which case that delivery is a no-op.
type Funcs struct {
	Confirmation func(ctx context.Context, email, code string) error
	Login        func(ctx context.Context, email, code string) error
}

// SendConfirmationCode implements the engine's Notifier interface.
func (f Funcs) SendConfirmationCode(ctx context.Context, email, code string) error {
	if f.Confirmation == nil {
		return nil
	}
	return f.Confirmation(ctx, email, code)
}

// SendLoginCode implements the engine's Notifier interface.
func (f Funcs) SendLoginCode(ctx context.Context, email, code string) error {
	if f.Login == nil {
		return nil
	}
	return f.Login(ctx, email, code)
}
