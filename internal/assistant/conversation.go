package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"banortesmart/backend/internal/logging"
	"banortesmart/backend/internal/store"
)

var ErrTurnInProgress = errors.New("a turn is already in progress for this session")

type sessionKey struct{}

// WithSessionID tags ctx so provider failures can be traced to a session.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

type Replier interface {
	Reply(ctx context.Context, question string) (Answer, error)
}

// Conversation keeps one append-only transcript per session and allows
// at most one in-flight turn per session.
type Conversation struct {
	replier  Replier
	messages store.TranscriptStore

	mu       sync.Mutex
	inFlight map[string]struct{}
	seeding  map[string]*seedLock
}

type seedLock struct {
	mu   sync.Mutex
	refs int
}

type Turn struct {
	Question store.Message `json:"question"`
	Answer   store.Message `json:"answer"`
}

func NewConversation(replier Replier, messages store.TranscriptStore) *Conversation {
	return &Conversation{
		replier:  replier,
		messages: messages,
		inFlight: make(map[string]struct{}),
		seeding:  make(map[string]*seedLock),
	}
}

// History returns the transcript, seeding the greeting on first access.
func (c *Conversation) History(ctx context.Context, sessionID string) ([]store.Message, error) {
	return c.ensureGreeting(ctx, sessionID)
}

// Send appends the question, answers it and appends the answer. A second
// Send for the same session while one is running gets ErrTurnInProgress.
func (c *Conversation) Send(ctx context.Context, sessionID, question string) (Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Turn{}, ErrEmptyQuestion
	}
	if !c.acquire(sessionID) {
		return Turn{}, ErrTurnInProgress
	}
	defer c.release(sessionID)

	if _, err := c.ensureGreeting(ctx, sessionID); err != nil {
		return Turn{}, err
	}

	userMessage, err := c.messages.Append(ctx, sessionID, store.Message{
		Role:    store.RoleUser,
		Content: question,
	})
	if err != nil {
		return Turn{}, fmt.Errorf("appending question: %w", err)
	}

	answer, err := c.replier.Reply(WithSessionID(ctx, sessionID), question)
	if err != nil {
		logging.Errorw("chat turn failed, replying with apology",
			"session_id", sessionID,
			"error", err,
		)
		answer = Answer{Text: ErrorReply, Source: SourceRules, Rule: ErrorRuleName}
	}

	assistantMessage, err := c.messages.Append(ctx, sessionID, store.Message{
		Role:    store.RoleAssistant,
		Content: answer.Text,
		Source:  string(answer.Source),
		Rule:    answer.Rule,
		Model:   answer.Model,
	})
	if err != nil {
		return Turn{}, fmt.Errorf("appending answer: %w", err)
	}

	logging.Debugw("chat turn completed",
		"session_id", sessionID,
		"source", answer.Source,
		"rule", answer.Rule,
	)
	return Turn{Question: userMessage, Answer: assistantMessage}, nil
}

func (c *Conversation) acquire(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[sessionID]; busy {
		return false
	}
	c.inFlight[sessionID] = struct{}{}
	return true
}

func (c *Conversation) release(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, sessionID)
}

// lockSeeding serializes greeting seeding within one session only.
func (c *Conversation) lockSeeding(sessionID string) func() {
	c.mu.Lock()
	lock, ok := c.seeding[sessionID]
	if !ok {
		lock = &seedLock{}
		c.seeding[sessionID] = lock
	}
	lock.refs++
	c.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		c.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(c.seeding, sessionID)
		}
		c.mu.Unlock()
	}
}

func (c *Conversation) ensureGreeting(ctx context.Context, sessionID string) ([]store.Message, error) {
	unlock := c.lockSeeding(sessionID)
	defer unlock()

	messages, err := c.messages.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing transcript: %w", err)
	}
	if len(messages) > 0 {
		return messages, nil
	}
	greeting, err := c.messages.Append(ctx, sessionID, store.Message{
		Role:    store.RoleAssistant,
		Content: Greeting,
	})
	if err != nil {
		return nil, fmt.Errorf("seeding greeting: %w", err)
	}
	return []store.Message{greeting}, nil
}
