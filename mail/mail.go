// Package mail delivers contact-form submissions to the site owner over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

var (
	ErrMissingFields = errors.New("mail: name, email and message are required")
	ErrInvalidEmail  = errors.New("mail: invalid email address")
	ErrNotConfigured = errors.New("mail: SMTP is not configured")
)

// Contact is a contact-form submission.
type Contact struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Validate trims c in place and checks the required fields.
func (c *Contact) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)
	if c.Name == "" || c.Email == "" || c.Message == "" {
		return ErrMissingFields
	}
	if _, err := netmail.ParseAddress(c.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Sender delivers a contact submission.
type Sender interface {
	Send(ctx context.Context, c Contact) error
}

// Config describes the SMTP relay. Gmail uses smtp.gmail.com:587 with an app password.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
	To       string // defaults to Username
	Timeout  time.Duration
}

// SMTP sends mail through an authenticated relay. Port 465 uses implicit TLS;
// any other port requires STARTTLS.
type SMTP struct {
	cfg  Config
	send func(ctx context.Context, m *gomail.Msg) error
	now  func() time.Time
}

// NewSMTP returns a Sender for cfg.
func NewSMTP(cfg Config) *SMTP {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.To == "" {
		cfg.To = cfg.Username
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	s := &SMTP{cfg: cfg, now: time.Now}
	s.send = s.dialAndSend
	return s
}

// Send relays c to the configured recipient with Reply-To set to the sender.
func (s *SMTP) Send(ctx context.Context, c Contact) error {
	if s.cfg.Host == "" || s.cfg.To == "" {
		return ErrNotConfigured
	}
	m, err := NewMessage(s.cfg.From, s.cfg.To, c, s.now())
	if err != nil {
		return err
	}
	if err := s.send(ctx, m); err != nil {
		return fmt.Errorf("mail: send via %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	return nil
}

func (s *SMTP) dialAndSend(ctx context.Context, m *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, m)
}

// NewMessage builds the plain-text message for a contact submission.
func NewMessage(from, to string, c Contact, now time.Time) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("mail: from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("mail: to address: %w", err)
	}
	if err := m.ReplyTo(c.Email); err != nil {
		return nil, fmt.Errorf("mail: reply-to address: %w", err)
	}
	m.Subject("Portfolio contact from " + c.Name)
	m.SetDateWithValue(now)
	body := strings.ReplaceAll(c.Message, "\r\n", "\n")
	m.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", c.Name, c.Email, body))
	return m, nil
}
