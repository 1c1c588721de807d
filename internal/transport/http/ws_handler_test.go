package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mscript-quiz-client/internal/app"
	"mscript-quiz-client/internal/domain"
	"mscript-quiz-client/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketQuizFlow(t *testing.T) {
	set, key := sampleSet()
	attempt, err := app.StartAttempt(context.Background(), memory.NewSource(set), memory.NewGrader(set, key), 0)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	defer attempt.Close()

	wsHandler := NewWSHandler(context.Background(), attempt, "/logout", nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The initial view event yields the first question and the state.
	question := readUntil(conn, t, "question")
	if question["counter"] != "Question 1 of 2" {
		t.Fatalf("expected first question, got %v", question["counter"])
	}
	state := readUntil(conn, t, "state")
	if state["guard"] != true {
		t.Fatalf("expected armed guard, got %v", state["guard"])
	}

	// Selecting an option re-renders the question with the selection set.
	writeMsg(conn, t, map[string]any{
		"type":    "select",
		"payload": map[string]any{"questionId": "1", "option": "B", "selected": true},
	})
	question = readUntil(conn, t, "question")
	options := question["options"].([]any)
	second := options[1].(map[string]any)
	if second["text"] != "B" || second["selected"] != true {
		t.Fatalf("expected B selected, got %v", options)
	}

	// Navigation moves the visible question.
	writeMsg(conn, t, map[string]any{
		"type":    "nav",
		"payload": map[string]any{"direction": "next"},
	})
	question = readUntil(conn, t, "question")
	if question["counter"] != "Question 2 of 2" {
		t.Fatalf("expected second question, got %v", question["counter"])
	}

	// Submitting yields the graded review and disarms the guard.
	writeMsg(conn, t, map[string]any{"type": "submit"})
	graded := readUntil(conn, t, "graded")
	if graded["score"].(float64) != 1 || graded["total"].(float64) != 2 {
		t.Fatalf("expected score 1/2, got %v", graded)
	}
	state = readUntil(conn, t, "state")
	if state["guard"] != false || state["phase"] != "graded" {
		t.Fatalf("expected disarmed guard in graded phase, got %v", state)
	}
}

func TestWebSocketDoubleSubmitIsAbsorbed(t *testing.T) {
	set, key := sampleSet()
	attempt, err := app.StartAttempt(context.Background(), memory.NewSource(set), memory.NewGrader(set, key), 0)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	defer attempt.Close()

	wsHandler := NewWSHandler(context.Background(), attempt, "/logout", nil)
	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	writeMsg(conn, t, map[string]any{"type": "submit"})
	writeMsg(conn, t, map[string]any{"type": "submit"})
	readUntil(conn, t, "graded")

	// Exactly one grading pass happened: the latch absorbed the duplicate.
	if result, ok := attempt.Result(); !ok || result.Total != 2 {
		t.Fatalf("expected one graded result, got %+v ok=%v", result, ok)
	}
	if attempt.Phase() != app.PhaseGraded {
		t.Fatalf("expected graded phase, got %v", attempt.Phase())
	}
}

func readUntil(conn *websocket.Conn, t *testing.T, expect string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type == expect {
			return msg.Payload
		}
	}
	t.Fatalf("did not receive %q message", expect)
	return nil
}

func writeMsg(conn *websocket.Conn, t *testing.T, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

func sampleSet() (domain.QuestionSet, memory.AnswerKey) {
	set := domain.QuestionSet{
		Duration: 5 * time.Minute,
		Questions: []domain.Question{
			{ID: "1", Prompt: "first?", Options: []string{"A", "B"}},
			{ID: "2", Prompt: "second?", Options: []string{"C", "D"}, Multiple: true},
		},
	}
	key := memory.AnswerKey{
		Correct: map[string][]string{
			"1": {"B"},
			"2": {"C", "D"},
		},
	}
	return set, key
}
