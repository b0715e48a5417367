package server

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"hanoi/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// ClientType distinguishes the shared board screen from player phones.
type ClientType int

const (
	ClientBoard  ClientType = 0
	ClientPlayer ClientType = 1
)

// Client represents a single WebSocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	MemberID string
	Type     ClientType
}

func NewClient(hub *Hub, conn *websocket.Conn, memberID string, clientType ClientType) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		MemberID: memberID,
		Type:     clientType,
	}
}

// ReadPump reads messages from the WebSocket and forwards to the hub.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws read error", "member", c.MemberID, "err", err)
			}
			break
		}
		var env protocol.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.hub.logger.Debug("ws parse error", "member", c.MemberID, "err", err)
			c.hub.sendTo(c, errorEnvelope(protocol.CodeBadRequest, "malformed message"))
			continue
		}
		select {
		case c.hub.incoming <- IncomingMessage{Client: c, Envelope: env}:
		case <-c.hub.quit:
			return
		}
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// IncomingMessage pairs a message with its source client.
type IncomingMessage struct {
	Client   *Client
	Envelope protocol.Envelope
}
