package stream

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"Erosion/internal/calc/engine"
	"Erosion/internal/calc/schema"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Message kinds sent to the client.
const (
	KindComponent = "component_result"
	KindResponse  = "calculation_response"
	KindError     = "error"
)

const writeWait = 10 * time.Second

type Message struct {
	Type      string                  `json:"type"`
	Component *schema.ComponentResult `json:"component,omitempty"`
	Response  *schema.Response        `json:"response,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

type Handler struct {
	Calc     *engine.Handler
	Upgrader websocket.Upgrader
}

func NewHandler(calc *engine.Handler) *Handler {
	return &Handler{
		Calc: calc,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

func send(conn *websocket.Conn, m Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(m)
}

// Serve reads request documents from the socket. Each component result is pushed as soon as it
// is calculated, followed by the full response.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(engine.MaxRequestBytes)
	logger := log.WithField("remote", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Debug("websocket closed")
			}
			return
		}
		var req schema.Request
		if err := json.Unmarshal(data, &req); err != nil {
			if err := send(conn, Message{Type: KindError, Error: "Invalid request payload"}); err != nil {
				return
			}
			continue
		}

		var writeErr error
		resp := h.Calc.Engine.Run(r.Context(), req, func(cr schema.ComponentResult) {
			if writeErr == nil {
				writeErr = send(conn, Message{Type: KindComponent, Component: &cr})
			}
		})
		h.Calc.Record(r.Context(), req, resp)
		if writeErr == nil {
			writeErr = send(conn, Message{Type: KindResponse, Response: &resp})
		}
		if writeErr != nil {
			if !errors.Is(writeErr, websocket.ErrCloseSent) {
				logger.WithError(writeErr).Warn("websocket write failed")
			}
			return
		}
	}
}
