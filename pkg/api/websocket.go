package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is open for the REST API as well
	},
}

// WSMessage is a client request on a game socket.
type WSMessage struct {
	Type    string          `json:"type"`              // "roll", "move", "ai", "player", "explain", "state", "ping"
	ID      string          `json:"id"`                // Request ID for correlating responses
	Payload json.RawMessage `json:"payload,omitempty"` // Type-specific payload
}

// WSResponse is a server message on a game socket. Besides request
// results, every state change of the game is pushed as a "state" message.
type WSResponse struct {
	Type    string `json:"type"`              // "result", "state", "error", "pong", "closed"
	ID      string `json:"id,omitempty"`      // Request ID
	Payload any    `json:"payload,omitempty"` // Response data
	Error   string `json:"error,omitempty"`   // Error message if any
	Code    string `json:"code,omitempty"`    // Error code if any
}

// WSClient is one connection following one game.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	gameID   string
	sendChan chan WSResponse
	stopped  chan struct{} // closed when the write pump exits
	done     chan struct{} // closed when the read pump exits
}

// WebSocket handles GET /api/games/{id}/ws.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	updates, unsubscribe, err := h.svc.Subscribe(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "game_id", id, "error", err)
		return
	}
	client := &WSClient{
		conn:     conn,
		handlers: h,
		gameID:   id,
		sendChan: make(chan WSResponse, 256),
		stopped:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	h.logger.Debug("websocket connected", "game_id", id)
	go client.writePump(updates)
	client.readPump(r.Context())
	close(client.done)
	<-client.stopped
	h.logger.Debug("websocket closed", "game_id", id)
}

func (c *WSClient) writePump(updates <-chan GameState) {
	defer close(c.stopped)
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.sendChan:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case st, ok := <-updates:
			if !ok {
				c.conn.WriteJSON(WSResponse{Type: "closed", Error: "game deleted"})
				return
			}
			if err := c.conn.WriteJSON(WSResponse{Type: "state", Payload: st}); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *WSClient) readPump(ctx context.Context) {
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(ctx, msg)
	}
}

// send queues a response unless the write pump is gone.
func (c *WSClient) send(resp WSResponse) {
	select {
	case c.sendChan <- resp:
	case <-c.stopped:
	}
}

func (c *WSClient) sendError(id string, err error) {
	_, code := errorStatus(err)
	c.send(WSResponse{Type: "error", ID: id, Error: err.Error(), Code: code})
}

func (c *WSClient) handleMessage(ctx context.Context, msg WSMessage) {
	svc := c.handlers.svc
	var (
		result any
		err    error
	)
	switch msg.Type {
	case "ping":
		c.send(WSResponse{Type: "pong", ID: msg.ID})
		return
	case "state":
		result, err = svc.GetGame(ctx, c.gameID)
	case "roll":
		result, err = svc.Roll(ctx, c.gameID)
	case "move":
		var req MoveRequest
		if err = decodePayload(msg.Payload, &req); err == nil {
			result, err = svc.Move(ctx, c.gameID, req)
		}
	case "ai":
		var req AIMoveRequest
		if err = decodePayload(msg.Payload, &req); err == nil {
			err = c.runFast(ctx, func() error {
				var err error
				result, err = svc.AIMove(ctx, c.gameID, req.Difficulty)
				return err
			})
		}
	case "player":
		var req SetPlayerRequest
		if err = decodePayload(msg.Payload, &req); err == nil {
			result, err = svc.SetPlayer(ctx, c.gameID, req.Player)
		}
	case "explain":
		var req ExplainRequest
		if err = decodePayload(msg.Payload, &req); err == nil {
			err = c.runFast(ctx, func() error {
				var err error
				result, err = svc.Explain(ctx, c.gameID, req)
				return err
			})
		}
	default:
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type", Code: "UNKNOWN_TYPE"})
		return
	}
	if err != nil {
		c.sendError(msg.ID, err)
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: result})
}

func (c *WSClient) runFast(ctx context.Context, fn func() error) error {
	if c.handlers.pool == nil {
		return fn()
	}
	return c.handlers.pool.RunFast(ctx, fn)
}

// decodePayload decodes an optional payload into v.
func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrInvalidRequest
	}
	return nil
}
