package room

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrRoomFull  = errors.New("room is full")
	ErrEmptyName = errors.New("name must not be empty")
	ErrNotFound  = errors.New("room not found")
	ErrMissingID = errors.New("member id must not be empty")
)

// Member is someone watching or playing in a room.
type Member struct {
	ID   string
	Name string
}

// Room is one shared puzzle table. The board screen and every phone that
// joined through the QR code see the same game.
type Room struct {
	mu         sync.Mutex
	ID         string
	Created    time.Time
	MaxMembers int
	members    []*Member
}

// NewRoom creates an empty room.
func NewRoom(id string, maxMembers int) *Room {
	return &Room{
		ID:         id,
		Created:    time.Now(),
		MaxMembers: maxMembers,
	}
}

// Join adds a member, or renames one that is already in the room.
func (r *Room) Join(id, name string) error {
	if id == "" {
		return ErrMissingID
	}
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.ID == id {
			m.Name = name // reconnect under a new name
			return nil
		}
	}
	if r.MaxMembers > 0 && len(r.members) >= r.MaxMembers {
		return ErrRoomFull
	}
	r.members = append(r.members, &Member{ID: id, Name: name})
	return nil
}

// Leave removes a member and reports whether it was present.
func (r *Room) Leave(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.members {
		if m.ID == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

// Name returns the display name of a member.
func (r *Room) Name(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.members {
		if m.ID == id {
			return m.Name, true
		}
	}
	return "", false
}

// Members returns a copy of the member list in join order.
func (r *Room) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Member, len(r.members))
	for i, m := range r.members {
		out[i] = *m
	}
	return out
}
