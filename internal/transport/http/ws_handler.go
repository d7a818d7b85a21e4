package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-engine/internal/app"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Category string `json:"category"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and binds each connection to its own quiz session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	runner, err := h.service.Open(ctx)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Close(ctx, runner.ID())

	updates, cancel := runner.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write error", "error", err, "session_id", runner.ID())
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "update", Payload: update}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if !enqueue(send, writerDone, outboundMessage[any]{Type: "session", Payload: sessionPayload{SessionID: runner.ID()}}) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var reply outboundMessage[any]
		cmd, err := decodeCommand(inbound)
		if err == nil {
			var update any
			update, err = runner.Do(ctx, cmd)
			// transitions reach the client through the subscription; reads are answered directly
			if err == nil && (cmd.Kind == app.CommandSummary || cmd.Kind == app.CommandView) {
				reply = outboundMessage[any]{Type: "update", Payload: update}
			}
		}
		if err != nil {
			reply = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
		if reply.Type != "" && !enqueue(send, writerDone, reply) {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer. It reports false once the writer has exited.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

var (
	errUnsupportedMessage = errors.New("unsupported message type")
	errInvalidPayload     = errors.New("invalid payload")
)

func decodeCommand(inbound inboundMessage) (app.Command, error) {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return app.Command{}, errInvalidPayload
		}
		return app.Command{Kind: app.CommandStart, Category: payload.Category}, nil
	case "answer":
		// a missing payload submits no selection
		var payload answerPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return app.Command{}, errInvalidPayload
			}
		}
		return app.Command{Kind: app.CommandAnswer, Option: payload.Option}, nil
	case "skip":
		return app.Command{Kind: app.CommandSkip}, nil
	case "previous":
		return app.Command{Kind: app.CommandPrevious}, nil
	case "restart":
		return app.Command{Kind: app.CommandRestart}, nil
	case "summary":
		return app.Command{Kind: app.CommandSummary}, nil
	case "view":
		return app.Command{Kind: app.CommandView}, nil
	}
	return app.Command{}, errUnsupportedMessage
}
