package http

import (
	"encoding/json"
	"log"
	"net/http"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	rooms    *app.RoomService
	upgrader websocket.Upgrader
}

func NewWSHandler(rooms *app.RoomService) *WSHandler {
	return &WSHandler{
		rooms: rooms,
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

type joinPayload struct {
	Room string `json:"room"`
	User string `json:"user"`
}

type doubtPayload struct {
	Room     string `json:"room"`
	RaisedBy string `json:"raisedBy"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type doubtIncrementPayload struct {
	Count    int64  `json:"count"`
	RaisedBy string `json:"raisedBy"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and routes room events.
//
// One connection may join any number of rooms; membership lasts until
// the connection closes. Raising doubts, starting quizzes, and resetting
// counters deliberately require no prior join: this service targets a
// trusted classroom, so any connected client may address any room.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan any, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// room -> cancel for every subscription this connection holds.
	// Disconnect tears them all down; there is no explicit leave event.
	cancels := make(map[string]func())
	relaysDone := make(map[string]chan struct{})
	defer func() {
		close(closeSignals)
		for _, cancel := range cancels {
			cancel()
		}
		for _, done := range relaysDone {
			<-done
		}
		close(send)
		<-writerDone
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "joinRoom":
			var payload joinPayload
			if !h.decode(inbound.Payload, &payload, send) {
				continue
			}
			if payload.Room == "" {
				h.protocolError(inbound.Type, send)
				continue
			}
			name := payload.User
			if name == "" {
				name = user
			}
			count, err := h.rooms.Join(r.Context(), payload.Room, name)
			if err != nil {
				send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			if _, joined := cancels[payload.Room]; !joined {
				updates, cancel := h.rooms.Subscribe(payload.Room)
				cancels[payload.Room] = cancel
				done := make(chan struct{})
				relaysDone[payload.Room] = done
				go relayRoomEvents(updates, send, closeSignals, done)
			}
			// Current count goes to the joiner only.
			send <- outboundMessage[int64]{Type: "doubtCount", Payload: count}

		case "incrementDoubt":
			var payload doubtPayload
			if !h.decode(inbound.Payload, &payload, send) {
				continue
			}
			if payload.Room == "" {
				h.protocolError(inbound.Type, send)
				continue
			}
			if _, err := h.rooms.RaiseDoubt(r.Context(), payload.Room, payload.RaisedBy); err != nil {
				send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}

		case "startQuiz":
			var payload roomPayload
			if !h.decode(inbound.Payload, &payload, send) {
				continue
			}
			if payload.Room == "" {
				h.protocolError(inbound.Type, send)
				continue
			}
			if err := h.rooms.StartQuiz(r.Context(), payload.Room, inbound.Payload); err != nil {
				send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}

		case "resetDoubts":
			var payload roomPayload
			if !h.decode(inbound.Payload, &payload, send) {
				continue
			}
			if payload.Room == "" {
				h.protocolError(inbound.Type, send)
				continue
			}
			if err := h.rooms.ResetDoubts(r.Context(), payload.Room); err != nil {
				send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}

		default:
			send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}
}

func (h *WSHandler) decode(raw json.RawMessage, dst any, send chan<- any) bool {
	if len(raw) == 0 || json.Unmarshal(raw, dst) != nil {
		log.Printf("dropping malformed event payload")
		send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
		return false
	}
	return true
}

// protocolError reports a client contract violation. The event is
// dropped and the connection stays open.
func (h *WSHandler) protocolError(eventType string, send chan<- any) {
	log.Printf("dropping %s event without room", eventType)
	send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "room is required"}}
}

// relayRoomEvents forwards room broadcasts to this connection's writer.
func relayRoomEvents(updates <-chan domain.RoomEvent, send chan<- any, closeSignals <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-updates:
			if !ok {
				return
			}
			select {
			case send <- outboundEvent(event):
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

// outboundEvent maps a room event onto its wire shape.
func outboundEvent(event domain.RoomEvent) any {
	switch event.Type {
	case domain.EventDoubtIncrement:
		return outboundMessage[doubtIncrementPayload]{
			Type:    string(event.Type),
			Payload: doubtIncrementPayload{Count: event.Count, RaisedBy: event.RaisedBy},
		}
	case domain.EventQuizStarted:
		// The quiz payload goes out exactly as it came in.
		return outboundMessage[json.RawMessage]{Type: string(event.Type), Payload: event.Quiz}
	default:
		return struct {
			Type string `json:"type"`
		}{Type: string(event.Type)}
	}
}
