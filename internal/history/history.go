package history

import (
	"sync"

	"interview-chatter/internal/chat"
)

// Factory builds the controller for a chat seen for the first time.
type Factory func(chatID int64) *chat.Controller

// Manager keeps one conversation per chat for the lifetime of the process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*chat.Controller
	factory  Factory
}

func NewManager(factory Factory) *Manager {
	return &Manager{sessions: make(map[int64]*chat.Controller), factory: factory}
}

// Get returns the chat's controller, creating it on first use.
func (m *Manager) Get(chatID int64) *chat.Controller {
	if c, ok := m.Lookup(chatID); ok {
		return c
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.sessions[chatID]; ok {
		return c
	}
	c := m.factory(chatID)
	m.sessions[chatID] = c
	return c
}

// Lookup returns the chat's controller without creating one.
func (m *Manager) Lookup(chatID int64) (*chat.Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[chatID]
	return c, ok
}

// Transcripts snapshots every chat's log.
func (m *Manager) Transcripts() map[int64]chat.Log {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]chat.Log, len(m.sessions))
	for id, c := range m.sessions {
		out[id] = c.Transcript()
	}
	return out
}
