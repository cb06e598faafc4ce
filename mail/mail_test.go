package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func TestContactValidate(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    error
	}{
		{"valid", Contact{Name: " Ada ", Email: "ada@example.com", Message: "hi"}, nil},
		{"missing name", Contact{Email: "ada@example.com", Message: "hi"}, ErrMissingFields},
		{"blank message", Contact{Name: "Ada", Email: "ada@example.com", Message: "  "}, ErrMissingFields},
		{"bad email", Contact{Name: "Ada", Email: "not-an-email", Message: "hi"}, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.contact
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func render(t *testing.T, m *gomail.Msg) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestNewMessageBlocksHeaderInjection(t *testing.T) {
	m, err := NewMessage("site@example.com", "me@example.com", Contact{
		Name:    "Eve\r\nBcc: victim@example.com",
		Email:   "eve@example.com",
		Message: "hi",
	}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	msg := render(t, m)
	assert.NotContains(t, msg, "\r\nBcc:")
	assert.Contains(t, msg, "To: <me@example.com>\r\n")
	assert.Contains(t, msg, "Reply-To: ")
	assert.Contains(t, msg, "eve@example.com")
}

func TestNewMessageLineEndings(t *testing.T) {
	for _, body := range []string{"line one\nline two", "line one\r\nline two"} {
		m, err := NewMessage("site@example.com", "me@example.com",
			Contact{Name: "Ada", Email: "ada@example.com", Message: body}, time.Now())
		require.NoError(t, err)

		msg := render(t, m)
		assert.Contains(t, msg, "line one\r\nline two")
		assert.NotContains(t, msg, "\r\r\n")
	}
}

func TestSMTPSend(t *testing.T) {
	var got *gomail.Msg
	s := NewSMTP(Config{Host: "smtp.example.com", Username: "me@example.com", Password: "pw"})
	s.send = func(_ context.Context, m *gomail.Msg) error {
		got = m
		return nil
	}

	err := s.Send(context.Background(), Contact{Name: "Ada", Email: "ada@example.com", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 587, s.cfg.Port)
	require.NotNil(t, got)
	rcpts, err := got.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"me@example.com"}, rcpts)
	from := got.GetFrom()
	require.Len(t, from, 1)
	assert.Equal(t, "me@example.com", from[0].Address)
	assert.Contains(t, render(t, got), "hello")
}

func TestSMTPSendErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		err := NewSMTP(Config{}).Send(context.Background(), Contact{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("relay failure is wrapped", func(t *testing.T) {
		relayErr := errors.New("535 auth failed")
		s := NewSMTP(Config{Host: "smtp.example.com", Username: "me@example.com"})
		s.send = func(context.Context, *gomail.Msg) error { return relayErr }
		err := s.Send(context.Background(), Contact{Name: "a", Email: "a@example.com", Message: "m"})
		assert.ErrorIs(t, err, relayErr)
	})
}
