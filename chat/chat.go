// Package chat proxies the site's chat widget to a hosted LLM. Every
// conversation is prefixed with a fixed system context describing the site
// owner, so answers stay on topic.
package chat

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoMessages    = errors.New("chat: no messages")
	ErrNotConfigured = errors.New("chat: provider is not configured")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MaxTurns bounds how much history is forwarded upstream.
const MaxTurns = 20

// Message is one turn of the widget's conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider completes a conversation.
type Provider interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
	Name() string
}

// Normalize drops empty turns and any client-supplied system turns, maps
// unknown roles to user, and keeps the last MaxTurns messages. The result
// must end with a user turn.
func Normalize(history []Message) ([]Message, error) {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		role := strings.ToLower(strings.TrimSpace(m.Role))
		switch role {
		case RoleSystem:
			continue
		case RoleAssistant:
		default:
			role = RoleUser
		}
		out = append(out, Message{Role: role, Content: content})
	}
	if len(out) > MaxTurns {
		out = out[len(out)-MaxTurns:]
	}
	if len(out) == 0 || out[len(out)-1].Role != RoleUser {
		return nil, ErrNoMessages
	}
	return out, nil
}

// Profile is what the assistant knows about the site owner.
type Profile struct {
	Name   string
	Title  string
	About  string
	Skills []string
	Extra  string
}

// SystemContext renders the fixed preamble sent before every conversation.
func SystemContext(p Profile) string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = "the site owner"
	}
	b.WriteString("You are the assistant on the personal portfolio website of ")
	b.WriteString(name)
	b.WriteString(". Answer questions about their work, projects, skills and experience. ")
	b.WriteString("Be concise and friendly. If a question is unrelated to the portfolio, politely steer back.")
	if p.Title != "" {
		b.WriteString("\n\nRole: ")
		b.WriteString(p.Title)
	}
	if p.About != "" {
		b.WriteString("\n\nAbout: ")
		b.WriteString(p.About)
	}
	if len(p.Skills) > 0 {
		b.WriteString("\n\nSkills: ")
		b.WriteString(strings.Join(p.Skills, ", "))
	}
	if p.Extra != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Extra)
	}
	return b.String()
}
