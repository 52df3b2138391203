package store

import (
	"context"
	"sync"
)

type Memory struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string][]Message)}
}

func (m *Memory) Append(_ context.Context, sessionID string, msg Message) (Message, error) {
	msg, err := prepare(sessionID, msg)
	if err != nil {
		return Message{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[msg.SessionID] = append(m.sessions[msg.SessionID], msg)
	return msg, nil
}

func (m *Memory) List(_ context.Context, sessionID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	messages := m.sessions[sessionID]
	out := make([]Message, len(messages))
	copy(out, messages)
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
