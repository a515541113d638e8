package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	store := memory.NewQuizStore()
	quizID, err := store.CreateQuiz(context.Background(), domain.Quiz{
		Title: "Sample",
		Questions: []domain.Question{
			{
				Text:          "Pick A",
				Options:       []string{"A", "B"},
				CorrectAnswer: "A",
				TimeLimit:     20,
			},
			{
				Text:          "Pick X",
				Options:       []string{"X", "Y"},
				CorrectAnswer: "X",
				TimeLimit:     20,
			},
		},
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	hub := NewHub()
	timings := app.Timings{StatsDelay: 5 * time.Millisecond, ZeroAnswerDelay: 5 * time.Millisecond}
	service := app.NewGameService(app.NewRegistry(), memory.NewQuizCache(store, time.Minute), hub, timings)
	wsHandler := NewWSHandler(service, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, quizID
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil reads events until one of the wanted type arrives, skipping
// interleaved broadcasts like roster updates.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < 20; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read while waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
	t.Fatalf("never received %s", want)
	return nil
}

func TestWebSocketGameFlow(t *testing.T) {
	server, quizID := newTestServer(t)

	host := dial(t, server)
	send(t, host, "createRoom", map[string]any{"quizId": quizID})
	created := readUntil(t, host, domain.EventRoomCreated)
	code, _ := created["code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected 6-digit room code, got %q", code)
	}

	player := dial(t, server)
	send(t, player, "joinRoom", map[string]any{"code": code, "nickname": "Alice"})
	readUntil(t, player, domain.EventJoinSuccess)
	roster := readUntil(t, host, domain.EventRoster)
	if players, ok := roster["players"].([]any); !ok || len(players) != 1 {
		t.Fatalf("unexpected roster payload %+v", roster)
	}

	send(t, host, "startGame", map[string]any{"code": code, "shuffle": false})
	question := readUntil(t, player, domain.EventNewQuestion)
	if question["questionText"] != "Pick A" {
		t.Fatalf("unexpected question %+v", question)
	}
	if _, leaked := question["correctAnswer"]; leaked {
		t.Fatalf("correct answer leaked to players: %+v", question)
	}
	readUntil(t, host, domain.EventNewQuestion)

	send(t, player, "submitAnswer", map[string]any{"code": code, "answer": "A"})
	result := readUntil(t, player, domain.EventAnswerResult)
	if result["correct"] != true {
		t.Fatalf("expected correct answer result, got %+v", result)
	}

	// Sole player answered: stats then leaderboard without waiting out the deadline.
	stats := readUntil(t, host, domain.EventAnswerStats)
	if stats["correctAnswer"] != "A" {
		t.Fatalf("unexpected stats %+v", stats)
	}
	leaderboard := readUntil(t, host, domain.EventLeaderboard)
	if players, ok := leaderboard["players"].([]any); !ok || len(players) != 1 {
		t.Fatalf("unexpected leaderboard %+v", leaderboard)
	}

	send(t, host, "nextQuestion", map[string]any{"code": code})
	second := readUntil(t, player, domain.EventNewQuestion)
	if second["questionText"] != "Pick X" {
		t.Fatalf("unexpected second question %+v", second)
	}

	send(t, host, "cancelRoom", map[string]any{"code": code})
	readUntil(t, player, domain.EventHostLeft)
}

func TestWebSocketJoinErrors(t *testing.T) {
	server, quizID := newTestServer(t)

	host := dial(t, server)
	send(t, host, "createRoom", map[string]any{"quizId": quizID})
	created := readUntil(t, host, domain.EventRoomCreated)
	code := created["code"].(string)

	p1 := dial(t, server)
	send(t, p1, "joinRoom", map[string]any{"code": code, "nickname": "Alice"})
	readUntil(t, p1, domain.EventJoinSuccess)

	p2 := dial(t, server)
	send(t, p2, "joinRoom", map[string]any{"code": code, "nickname": "ALICE"})
	readUntil(t, p2, domain.EventJoinError)

	p3 := dial(t, server)
	send(t, p3, "joinRoom", map[string]any{"code": "000000", "nickname": "Bob"})
	readUntil(t, p3, domain.EventJoinError)
}

func TestWebSocketHostDisconnectNotifiesPlayers(t *testing.T) {
	server, quizID := newTestServer(t)

	host := dial(t, server)
	send(t, host, "createRoom", map[string]any{"quizId": quizID})
	created := readUntil(t, host, domain.EventRoomCreated)
	code := created["code"].(string)

	player := dial(t, server)
	send(t, player, "joinRoom", map[string]any{"code": code, "nickname": "Alice"})
	readUntil(t, player, domain.EventJoinSuccess)

	host.Close()
	readUntil(t, player, domain.EventHostLeft)
}

func TestWebSocketUnknownAction(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server)
	send(t, conn, "bogus", map[string]any{})
	readUntil(t, conn, domain.EventError)
}
