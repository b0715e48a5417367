package room

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// Manager manages multiple rooms.
type Manager struct {
	mu         sync.Mutex
	rooms      map[string]*Room
	maxMembers int
}

func NewManager(maxMembers int) *Manager {
	return &Manager{
		rooms:      make(map[string]*Room),
		maxMembers: maxMembers,
	}
}

// Create creates a new room and returns it.
func (m *Manager) Create() *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := GenerateID(4)
	for m.rooms[id] != nil {
		id = GenerateID(4)
	}
	r := NewRoom(id, m.maxMembers)
	m.rooms[id] = r
	return r
}

// Get returns a room by ID.
func (m *Manager) Get(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Remove drops a room from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

// Len returns the number of open rooms.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// GenerateID returns n random bytes, hex encoded.
func GenerateID(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
