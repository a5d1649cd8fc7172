package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// Message types of the live session
const (
	MsgCalculate = "calculate"
	MsgPing      = "ping"
	MsgPong      = "pong"
	MsgInferred  = "inferred"
	MsgResult    = "result"
	MsgError     = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler runs live calculation sessions. Each calculate message
// is answered by zero or more inferred messages followed by one result or
// error message carrying the same id.
type WebSocketHandler struct {
	handler *Handler
	logger  *logging.Logger
}

// NewWebSocketHandler creates a websocket handler sharing h's orchestrator
// and defaults
func NewWebSocketHandler(h *Handler) *WebSocketHandler {
	return &WebSocketHandler{
		handler: h,
		logger:  logging.Wrap(h.logger.Logger, "websocket"),
	}
}

// WSMessage is a client message
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse is a server message
type WSResponse struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

type wsSession struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	seq    int
	logger *logging.Logger
}

// ServeHTTP upgrades the connection and serves the session until the
// client goes away
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	s := &wsSession{id: uuid.New().String(), conn: conn}
	s.logger = h.logger.With("session", s.id)
	h.serve(r, s)
}

func (h *WebSocketHandler) serve(r *http.Request, s *wsSession) {
	defer s.conn.Close()
	s.logger.Info("WebSocket session opened", "remote", s.conn.RemoteAddr().String())

	s.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg WSMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read error", "error", err)
			} else {
				s.logger.Info("WebSocket session closed", "messages", s.seq)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		s.seq++

		switch msg.Type {
		case MsgPing:
			s.send(WSResponse{Type: MsgPong, ID: msg.ID})
		case MsgCalculate:
			h.calculate(r, s, msg)
		default:
			s.sendError(msg.ID, mdwerror.Newf("unknown message type %q", msg.Type).
				WithCode(mdwerror.CodeInvalidInput))
		}
	}
}

func (h *WebSocketHandler) calculate(r *http.Request, s *wsSession, msg WSMessage) {
	id := msg.ID
	if id == "" {
		id = fmt.Sprintf("%d", s.seq)
	}

	var body CalculateRequest
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		s.sendError(id, mdwerror.Wrap(err, "invalid calculate payload").
			WithCode(mdwerror.CodeInvalidFormat))
		return
	}
	req, err := h.handler.request(body)
	if err != nil {
		s.sendError(id, err)
		return
	}

	ctx := calc.WithRequestID(r.Context(), s.id+"/"+id)
	sink := calc.SinkFunc(func(kind units.Kind, value calc.Value) {
		s.send(WSResponse{Type: MsgInferred, ID: id, Payload: calc.Inference{Kind: kind, Value: value}})
	})

	result, err := h.handler.calc.Calculate(ctx, req, sink)
	if err != nil {
		s.sendError(id, err)
		return
	}
	s.send(WSResponse{Type: MsgResult, ID: id, Payload: result})
}

func (s *wsSession) send(resp WSResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := s.conn.WriteJSON(resp); err != nil {
		s.logger.Warn("WebSocket send error", "error", err)
	}
}

func (s *wsSession) sendError(id string, err error) {
	resp, _ := errorResponse(err)
	s.send(WSResponse{Type: MsgError, ID: id, Payload: resp})
}
