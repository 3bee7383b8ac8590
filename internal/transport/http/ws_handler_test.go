package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	service := app.NewRoomService(memory.NewDoubtCounter())
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestJoinRoomReceivesCurrentCount(t *testing.T) {
	server := newWSServer(t)
	conn := dialWS(t, server)

	writeEvent(t, conn, "joinRoom", map[string]any{"room": "math-101", "user": "Alice"})

	typ, payload := readNext(t, conn, "doubtCount")
	if typ != "doubtCount" {
		t.Fatalf("expected doubtCount, got %s", typ)
	}
	var count int64
	if err := json.Unmarshal(payload, &count); err != nil {
		t.Fatalf("unmarshal count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected fresh room count 0, got %d", count)
	}
}

func TestDoubtIncrementReachesAllRoomMembers(t *testing.T) {
	server := newWSServer(t)

	teacher := dialWS(t, server)
	student := dialWS(t, server)

	writeEvent(t, teacher, "joinRoom", map[string]any{"room": "math-101", "user": "Teacher"})
	readNext(t, teacher, "doubtCount")
	writeEvent(t, student, "joinRoom", map[string]any{"room": "math-101", "user": "Student"})
	readNext(t, student, "doubtCount")

	writeEvent(t, student, "incrementDoubt", map[string]any{"room": "math-101", "raisedBy": "Student"})

	for _, conn := range []*websocket.Conn{teacher, student} {
		_, payload := readNext(t, conn, "doubtIncrement")
		var inc struct {
			Count    int64  `json:"count"`
			RaisedBy string `json:"raisedBy"`
		}
		if err := json.Unmarshal(payload, &inc); err != nil {
			t.Fatalf("unmarshal increment: %v", err)
		}
		if inc.Count != 1 || inc.RaisedBy != "Student" {
			t.Fatalf("unexpected increment payload: %+v", inc)
		}
	}
}

func TestRaiseWithoutJoinStillBroadcasts(t *testing.T) {
	server := newWSServer(t)

	member := dialWS(t, server)
	outsider := dialWS(t, server)

	writeEvent(t, member, "joinRoom", map[string]any{"room": "math-101"})
	readNext(t, member, "doubtCount")

	// The outsider never joined; the router does not enforce membership.
	writeEvent(t, outsider, "incrementDoubt", map[string]any{"room": "math-101"})

	_, payload := readNext(t, member, "doubtIncrement")
	var inc struct {
		Count    int64  `json:"count"`
		RaisedBy string `json:"raisedBy"`
	}
	if err := json.Unmarshal(payload, &inc); err != nil {
		t.Fatalf("unmarshal increment: %v", err)
	}
	if inc.Count != 1 {
		t.Fatalf("expected count 1, got %d", inc.Count)
	}
	if inc.RaisedBy != app.AnonymousName {
		t.Fatalf("expected anonymous attribution, got %q", inc.RaisedBy)
	}
}

func TestStartQuizRelaysPayloadUnchanged(t *testing.T) {
	server := newWSServer(t)

	student := dialWS(t, server)
	teacher := dialWS(t, server)

	writeEvent(t, student, "joinRoom", map[string]any{"room": "math-101"})
	readNext(t, student, "doubtCount")

	quiz := map[string]any{
		"room":  "math-101",
		"title": "Pop quiz",
		"questions": []map[string]any{
			{"text": "What is 2 + 2?", "options": []string{"3", "4"}, "correctIndex": 1, "points": 10},
		},
	}
	writeEvent(t, teacher, "startQuiz", quiz)

	_, payload := readNext(t, student, "quizStarted")
	var got map[string]any
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal quiz: %v", err)
	}
	if got["title"] != "Pop quiz" || got["room"] != "math-101" {
		t.Fatalf("quiz payload transformed: %+v", got)
	}
	questions, ok := got["questions"].([]any)
	if !ok || len(questions) != 1 {
		t.Fatalf("expected questions relayed, got %+v", got["questions"])
	}
}

func TestResetDoubtsBroadcastsAndZeroes(t *testing.T) {
	server := newWSServer(t)
	conn := dialWS(t, server)

	writeEvent(t, conn, "joinRoom", map[string]any{"room": "math-101"})
	readNext(t, conn, "doubtCount")

	writeEvent(t, conn, "incrementDoubt", map[string]any{"room": "math-101"})
	readNext(t, conn, "doubtIncrement")

	writeEvent(t, conn, "resetDoubts", map[string]any{"room": "math-101"})
	readNext(t, conn, "doubtReset")

	// A fresh join confirms the counter went back to zero.
	other := dialWS(t, server)
	writeEvent(t, other, "joinRoom", map[string]any{"room": "math-101"})
	_, payload := readNext(t, other, "doubtCount")
	var count int64
	if err := json.Unmarshal(payload, &count); err != nil {
		t.Fatalf("unmarshal count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 after reset, got %d", count)
	}
}

func TestMissingRoomIsRecoverableProtocolError(t *testing.T) {
	server := newWSServer(t)
	conn := dialWS(t, server)

	writeEvent(t, conn, "incrementDoubt", map[string]any{"raisedBy": "Nobody"})
	readNext(t, conn, "error")

	// Connection survives the protocol error.
	writeEvent(t, conn, "joinRoom", map[string]any{"room": "math-101"})
	readNext(t, conn, "doubtCount")
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	msg := map[string]any{"type": eventType, "payload": payload}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", eventType, err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
