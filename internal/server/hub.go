package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hanoi/internal/engine"
	"hanoi/internal/protocol"
	"hanoi/internal/room"
)

// Hub manages WebSocket connections and game state for one room.
type Hub struct {
	mu         sync.Mutex
	room       *room.Room
	game       *engine.Engine
	delay      time.Duration
	logger     *slog.Logger
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	closeOnce  sync.Once

	// Owned by the Run goroutine.
	solveCancel context.CancelFunc
	solveDone   chan struct{}
}

func NewHub(r *room.Room, game *engine.Engine, delay time.Duration, logger *slog.Logger) *Hub {
	return &Hub{
		room:       r,
		game:       game,
		delay:      delay,
		logger:     logger.With("room", r.ID),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client connected", "member", client.MemberID, "type", client.Type)
			h.sendRoomUpdate()
			h.sendTo(client, protocol.MustEnvelope(protocol.MsgState, h.game.Snapshot()))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if ok && client.MemberID != "" && h.room.Leave(client.MemberID) {
				h.sendRoomUpdate()
			}

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			h.cancelSolve()
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) RoomID() string {
	return h.room.ID
}

// Stop shuts the hub down and disconnects its clients.
func (h *Hub) Stop() {
	h.closeOnce.Do(func() { close(h.quit) })
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	switch msg.Envelope.Type {
	case protocol.MsgJoin:
		h.handleJoin(msg)
	case protocol.MsgNewGame:
		h.handleNewGame(msg)
	case protocol.MsgAutoSolve:
		h.handleAutoSolve(msg)
	case protocol.MsgStopSolve:
		h.handleStopSolve(msg)
	default:
		h.handleGameAction(msg)
	}
}

func (h *Hub) handleJoin(msg IncomingMessage) {
	var join protocol.JoinMsg
	if err := msg.Envelope.Decode(&join); err != nil {
		h.sendError(msg.Client, err)
		return
	}
	if err := h.room.Join(join.MemberID, join.Name); err != nil {
		h.sendError(msg.Client, err)
		return
	}
	msg.Client.MemberID = join.MemberID
	h.logger.Info("member joined", "member", join.MemberID, "name", join.Name)
	h.sendRoomUpdate()
}

func (h *Hub) handleNewGame(msg IncomingMessage) {
	var game protocol.GameMsg
	if err := msg.Envelope.Decode(&game); err != nil {
		h.sendError(msg.Client, err)
		return
	}
	// Validate before touching a running solver so a bad request leaves it be.
	if err := h.checkDisks(game.Disks); err != nil {
		h.sendError(msg.Client, err)
		return
	}
	h.cancelSolve()
	ev, err := h.game.Initialize(game.Disks)
	if err != nil {
		h.sendError(msg.Client, err)
		return
	}
	h.logger.Info("game started", "disks", game.Disks, "member", msg.Client.MemberID)
	h.broadcastEvent(ev)
}

func (h *Hub) handleAutoSolve(msg IncomingMessage) {
	game := protocol.GameMsg{Disks: h.game.Disks()}
	if err := msg.Envelope.Decode(&game); err != nil {
		h.sendError(msg.Client, err)
		return
	}
	if err := h.checkDisks(game.Disks); err != nil {
		h.sendError(msg.Client, err)
		return
	}
	h.cancelSolve()
	run, err := h.game.AutoSolve(game.Disks)
	if err != nil {
		h.sendError(msg.Client, err)
		return
	}
	h.logger.Info("auto-solve started", "disks", game.Disks, "generation", run.Generation())
	h.broadcastEvent(run.Started())
	h.startSolve(run)
}

func (h *Hub) handleStopSolve(msg IncomingMessage) {
	if h.game.Phase() != engine.PhaseAutoSolving {
		h.sendError(msg.Client, fmt.Errorf("%w: auto-solver is not running", engine.ErrIllegalMove))
		return
	}
	h.cancelSolve()
}

func (h *Hub) handleGameAction(msg IncomingMessage) {
	action, err := parseAction(msg.Envelope)
	if err != nil {
		h.sendError(msg.Client, err)
		return
	}

	events, err := h.game.Apply(action)
	if err != nil {
		h.sendError(msg.Client, err)
		return
	}
	for _, ev := range events {
		h.broadcastEvent(ev)
	}
}

var errBadRequest = errors.New("bad request")

func parseAction(env protocol.Envelope) (engine.Action, error) {
	action := engine.Action{Type: engine.ActionType(env.Type)}

	switch env.Type {
	case protocol.MsgLift, protocol.MsgDrop:
		var m protocol.PegMsg
		if err := env.Decode(&m); err != nil {
			return engine.Action{}, err
		}
		action.Peg = m.Peg
	case protocol.MsgMove:
		var m protocol.MoveMsg
		if err := env.Decode(&m); err != nil {
			return engine.Action{}, err
		}
		action.From, action.To = m.From, m.To
	case protocol.MsgCancel:
	default:
		return engine.Action{}, fmt.Errorf("%w: unknown message type %q", errBadRequest, env.Type)
	}
	return action, nil
}

func (h *Hub) checkDisks(n int) error {
	cfg := h.game.Config()
	if n < cfg.MinDisks || n > cfg.MaxDisks {
		return fmt.Errorf("%w: %d not in [%d, %d]", engine.ErrInvalidDiskCount, n, cfg.MinDisks, cfg.MaxDisks)
	}
	return nil
}

// startSolve paces run on its own goroutine. Only one run is active per hub;
// cancelSolve must be called before starting another.
func (h *Hub) startSolve(run *engine.Run) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	h.solveCancel, h.solveDone = cancel, done

	go func() {
		defer close(done)
		err := engine.Pace(ctx, run, h.delay, h.broadcastEvent)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, engine.ErrSolveCancelled):
			h.logger.Debug("auto-solve cancelled", "generation", run.Generation())
		default:
			h.logger.Error("auto-solve failed", "generation", run.Generation(), "err", err)
		}
	}()
}

// cancelSolve stops the running solver, if any, and waits for its goroutine
// so none of its events can arrive after whatever the caller does next.
func (h *Hub) cancelSolve() {
	if h.solveCancel == nil {
		return
	}
	h.solveCancel()
	<-h.solveDone
	h.solveCancel, h.solveDone = nil, nil
}

func (h *Hub) broadcastEvent(ev engine.Event) {
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgEvent, ev))
	if ev.Type != engine.EventSolved {
		return
	}
	h.logger.Info("puzzle solved",
		"moves", ev.Snapshot.MoveCount,
		"minimum", ev.Snapshot.Minimum,
		"by_solver", ev.Solver,
	)
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgSolved, protocol.SolvedMsg{
		Moves:    ev.Snapshot.MoveCount,
		Minimum:  ev.Snapshot.Minimum,
		BySolver: ev.Solver,
	}))
}

func (h *Hub) sendRoomUpdate() {
	members := h.room.Members()
	rms := make([]protocol.RoomMember, len(members))
	for i, m := range members {
		rms[i] = protocol.RoomMember{ID: m.ID, Name: m.Name}
	}
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgRoomUpdate, protocol.RoomUpdate{
		RoomID:  h.room.ID,
		Members: rms,
	}))
}

func (h *Hub) broadcastAll(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("broadcast marshal error", "type", env.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client buffer full", "member", client.MemberID)
		}
	}
}

// sendTo delivers env to one client if it is still connected.
func (h *Hub) sendTo(client *Client, env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshal error", "type", env.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("client send buffer full, dropping message", "member", client.MemberID)
	}
}

func (h *Hub) sendError(client *Client, err error) {
	env := errorEnvelope(errorCode(err), err.Error())
	h.logger.Debug("rejected request", "member", client.MemberID, "err", err)
	h.sendTo(client, env)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidDiskCount):
		return protocol.CodeInvalidDiskCount
	case errors.Is(err, engine.ErrIllegalMove):
		return protocol.CodeIllegalMove
	default:
		return protocol.CodeBadRequest
	}
}

func errorEnvelope(code, message string) protocol.Envelope {
	return protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Code: code, Message: message})
}
