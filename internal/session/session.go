// Package session tracks where each chat currently is in the menu flow.
package session

import "sync"

// State is the chat's position in the menu flow.
type State int

const (
	// StateIdle means no selection is pending; menu taps are accepted.
	StateIdle State = iota
	// StateAwaitingRecipeCategory means the category keyboard was sent.
	StateAwaitingRecipeCategory
	// StateAwaitingMusicGenre means the genre keyboard was sent.
	StateAwaitingMusicGenre
)

func (s State) String() string {
	switch s {
	case StateAwaitingRecipeCategory:
		return "awaiting_recipe_category"
	case StateAwaitingMusicGenre:
		return "awaiting_music_genre"
	default:
		return "idle"
	}
}

// Session is the per-chat conversation state. Genre remembers the last
// resolved music genre so the replay button can reuse it.
type Session struct {
	State State
	Genre string
}

// Store is the narrow session interface the conversation handler depends
// on. Implementations must be safe for concurrent use: updates for
// different chats are handled on separate goroutines.
type Store interface {
	Get(chatID int64) Session
	Set(chatID int64, s Session)
	Clear(chatID int64)
}

// MemoryStore keeps sessions in a mutex-guarded map. Sessions live for the
// process lifetime; chats that never come back simply stay idle.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

// Get returns the chat's session, or the zero (idle) session for chats
// seen for the first time.
func (m *MemoryStore) Get(chatID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[chatID]
}

func (m *MemoryStore) Set(chatID int64, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = s
}

func (m *MemoryStore) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
