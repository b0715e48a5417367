package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"hanoi/internal/config"
	"hanoi/internal/engine"
	qr "hanoi/internal/qrcode"
	"hanoi/internal/room"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	Rooms  *room.Manager
	cfg    config.Config
	logger *slog.Logger

	mu   sync.Mutex
	hubs map[string]*Hub
}

func NewHandlers(cfg config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		Rooms:  room.NewManager(cfg.MaxMembers),
		cfg:    cfg,
		logger: logger,
		hubs:   make(map[string]*Hub),
	}
}

// CreateRoom opens a room with a fresh game of the default size and starts
// its hub.
func (h *Handlers) CreateRoom() (*Hub, error) {
	game, err := engine.New(engine.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if _, err := game.Initialize(h.cfg.DefaultDisks); err != nil {
		return nil, err
	}

	r := h.Rooms.Create()
	hub := NewHub(r, game, h.cfg.MoveDelay, h.logger)
	h.mu.Lock()
	h.hubs[r.ID] = hub
	h.mu.Unlock()
	go hub.Run()

	h.logger.Info("room created", "room", r.ID, "disks", h.cfg.DefaultDisks)
	return hub, nil
}

// Hub returns the hub of a room.
func (h *Handlers) Hub(roomID string) (*Hub, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	hub, ok := h.hubs[roomID]
	return hub, ok
}

// Close stops every hub.
func (h *Handlers) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, hub := range h.hubs {
		hub.Stop()
		h.Rooms.Remove(id)
		delete(h.hubs, id)
	}
}

// roomHub resolves the room query parameter, writing an HTTP error if it
// does not name an open room.
func (h *Handlers) roomHub(w http.ResponseWriter, r *http.Request) (*Hub, bool) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		http.Error(w, "missing room parameter", http.StatusBadRequest)
		return nil, false
	}
	hub, ok := h.Hub(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return nil, false
	}
	return hub, true
}

// HandleCreateRoom creates a new room and sends the board screen to it.
func (h *Handlers) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	hub, err := h.CreateRoom()
	if err != nil {
		h.logger.Error("create room", "err", err)
		http.Error(w, "could not create room", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/board.html?room=%s", hub.room.ID), http.StatusSeeOther)
}

// HandleQR generates a QR code PNG for joining the room.
func (h *Handlers) HandleQR(w http.ResponseWriter, r *http.Request) {
	hub, ok := h.roomHub(w, r)
	if !ok {
		return
	}
	base := h.cfg.PublicURL
	if base == "" {
		base = r.Host
	}
	png, err := qr.Generate(qr.JoinURL(base, hub.room.ID), qr.DefaultSize)
	if err != nil {
		h.logger.Error("qr generation failed", "room", hub.room.ID, "err", err)
		http.Error(w, "QR generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleState returns the room's current board as JSON.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	hub, ok := h.roomHub(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(hub.game.Snapshot()); err != nil {
		h.logger.Warn("write state", "room", hub.room.ID, "err", err)
	}
}

// HandleWS handles WebSocket connections.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	hub, ok := h.roomHub(w, r)
	if !ok {
		return
	}
	memberID := r.URL.Query().Get("member")
	clientType := r.URL.Query().Get("type") // "board" or "player"

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade error", "err", err)
		return
	}

	ct := ClientPlayer
	if clientType == "board" {
		ct = ClientBoard
	}

	client := NewClient(hub, conn, memberID, ct)
	select {
	case hub.register <- client:
	case <-hub.quit:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// HandleMemberID returns a new member ID.
func (h *Handlers) HandleMemberID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(room.GenerateID(8)))
}
