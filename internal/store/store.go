// Package store persists chat transcripts, one append-only list of
// messages per session.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrEmptySessionID = errors.New("session id is required")

type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	Rule      string    `json:"rule,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptStore keeps messages in the order they were appended.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, msg Message) (Message, error)
	List(ctx context.Context, sessionID string) ([]Message, error)
	Close() error
}

// Open picks an implementation from the URL scheme: empty or memory:// for
// the in-process store, sqlite://path for SQLite, postgres URLs for pgx.
func Open(ctx context.Context, rawURL string) (TranscriptStore, error) {
	trimmed := strings.TrimSpace(rawURL)
	switch {
	case trimmed == "" || strings.HasPrefix(trimmed, "memory://"):
		return NewMemory(), nil
	case strings.HasPrefix(trimmed, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(trimmed, "sqlite://"))
	case isPostgresURL(trimmed):
		return OpenPostgres(ctx, trimmed)
	default:
		return nil, fmt.Errorf("unsupported transcript store url scheme: %q", schemeOf(trimmed))
	}
}

// prepare fills the fields every implementation assigns on append.
func prepare(sessionID string, msg Message) (Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Message{}, ErrEmptySessionID
	}
	msg.SessionID = sessionID
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	return msg, nil
}

func schemeOf(rawURL string) string {
	if idx := strings.Index(rawURL, "://"); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}
