package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/guessword/go/internal/game/protocol"
	"github.com/mcdev12/guessword/go/internal/game/session"
	"github.com/mcdev12/guessword/go/internal/words"
)

type testServer struct {
	*httptest.Server
	manager *ConnectionManager
	session *session.Session
}

func newTestServer(t *testing.T, config ConnectionConfig, pool ...string) *testServer {
	t.Helper()

	cm := NewConnectionManager(config)
	sess := session.New(session.DefaultConfig(), words.NewBank(pool), cm,
		session.WithClock(clockwork.NewFakeClock()))
	svc := NewService(cm, protocol.NewDispatcher(sess), sess)

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		svc.Stop()
		sess.Close()
		srv.Close()
	})
	return &testServer{Server: srv, manager: cm, session: sess}
}

func (s *testServer) dial(t *testing.T, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	return string(msg)
}

func expectFrame(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()
	if got := readFrame(t, conn); got != want {
		t.Fatalf("frame = %q, want %q", got, want)
	}
}

func TestGameScenarioOverWebSocket(t *testing.T) {
	srv := newTestServer(t, DefaultConnectionConfig(), "BRIDGE", "CASTLE")

	host := srv.dial(t, nil)
	sendFrame(t, host, `{"action":"create_game","host_name":"Host","passcode":"7777"}`)
	expectFrame(t, host, "Game created! Passcode: 7777")

	bob := srv.dial(t, nil)
	sendFrame(t, bob, `{"action":"join_game","player_name":"Bob","passcode":"7777"}`)
	expectFrame(t, bob, "Bob joined the game!")
	expectFrame(t, bob, "Welcome Bob! Your score is 0.")
	expectFrame(t, host, "Bob joined the game!")

	sendFrame(t, host, `{"action":"start_game"}`)
	started := "Game started! Word to guess: _ _ _ _ _ _"
	expectFrame(t, host, started)
	expectFrame(t, bob, started)

	sendFrame(t, bob, `{"action":"guess_word","player_name":"Bob","guess":"bridge"}`)
	solved := "BRIDGE"
	first := readFrame(t, bob)
	if first == session.MsgIncorrectGuess {
		solved = "CASTLE"
		sendFrame(t, bob, `{"action":"guess_word","player_name":"Bob","guess":"castle"}`)
		first = readFrame(t, bob)
	}

	reveal := "Bob guessed the word! The word was " + solved
	if first != reveal {
		t.Fatalf("frame = %q, want %q", first, reveal)
	}
	scores := `{"scores":[["Host",0],["Bob",10]]}`
	next := "Next word: _ _ _ _ _ _"
	expectFrame(t, bob, scores)
	expectFrame(t, bob, next)

	expectFrame(t, host, reveal)
	expectFrame(t, host, scores)
	expectFrame(t, host, next)

	sendFrame(t, host, `{"action":"leaderboard"}`)
	expectFrame(t, host, `{"leaderboard":[["Bob",10],["Host",0]]}`)
}

func TestProtocolErrorsKeepConnectionOpen(t *testing.T) {
	srv := newTestServer(t, DefaultConnectionConfig(), "APPLE")
	conn := srv.dial(t, nil)

	sendFrame(t, conn, `not json`)
	expectFrame(t, conn, protocol.MsgInvalidJSON)

	sendFrame(t, conn, `{"action":"fly"}`)
	expectFrame(t, conn, protocol.MsgUnknownAction)

	sendFrame(t, conn, `{"action":"start_game"}`)
	expectFrame(t, conn, session.MsgNoActiveWord)

	if got := srv.manager.Stats().ActiveConnections; got != 1 {
		t.Errorf("ActiveConnections = %d, want 1", got)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	srv := newTestServer(t, DefaultConnectionConfig(), "APPLE")
	conn := srv.dial(t, nil)

	sendFrame(t, conn, `{"action":"leaderboard"}`)
	expectFrame(t, conn, `{"leaderboard":[]}`)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.manager.Stats().ActiveConnections != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was not unregistered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOriginCheck(t *testing.T) {
	config := DefaultConnectionConfig()
	config.AllowedOrigins = []string{"http://allowed.example"}
	srv := newTestServer(t, config, "APPLE")

	srv.dial(t, http.Header{"Origin": []string{"http://allowed.example"}})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	if err == nil {
		t.Fatal("expected dial from a foreign origin to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestShutdownClosesConnections(t *testing.T) {
	srv := newTestServer(t, DefaultConnectionConfig(), "APPLE")
	conn := srv.dial(t, nil)

	sendFrame(t, conn, `{"action":"leaderboard"}`)
	readFrame(t, conn)

	srv.manager.Shutdown()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() error = %v, want normal closure", err)
	}
	if got := srv.manager.Stats().ActiveConnections; got != 0 {
		t.Errorf("ActiveConnections = %d, want 0", got)
	}
}

func TestBroadcastEvictsStalledConnection(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	healthy := &Connection{id: uuid.New(), send: make(chan string, 4), manager: cm}
	stalled := &Connection{id: uuid.New(), send: make(chan string, 1), manager: cm}
	cm.Register(healthy)
	cm.Register(stalled)

	cm.Broadcast("one")
	cm.Broadcast("two")

	stats := cm.Stats()
	if stats.ActiveConnections != 1 || stats.TotalEvicted != 1 {
		t.Fatalf("stats = %+v, want 1 active and 1 evicted", stats)
	}
	for _, want := range []string{"one", "two"} {
		if got := <-healthy.send; got != want {
			t.Errorf("healthy got %q, want %q", got, want)
		}
	}
	if got := <-stalled.send; got != "one" {
		t.Errorf("stalled got %q, want one", got)
	}
	if _, open := <-stalled.send; open {
		t.Error("stalled send queue should be closed")
	}

	if cm.Unicast(stalled, "three") {
		t.Error("Unicast to an evicted connection should fail")
	}
	cm.Unregister(stalled)
}

func TestStatsEndpoints(t *testing.T) {
	srv := newTestServer(t, DefaultConnectionConfig(), "APPLE", "EAGLE")
	conn := srv.dial(t, nil)
	sendFrame(t, conn, `{"action":"create_game","host_name":"Host","passcode":1}`)
	expectFrame(t, conn, "Game created! Passcode: 1")

	resp, err := http.Get(srv.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("GET /ws/stats error = %v", err)
	}
	var stats ConnectionStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	resp.Body.Close()
	if stats.ActiveConnections != 1 || stats.TotalRegistered != 1 {
		t.Errorf("stats = %+v", stats)
	}

	resp, err = http.Get(srv.URL + "/api/game/state")
	if err != nil {
		t.Fatalf("GET /api/game/state error = %v", err)
	}
	defer resp.Body.Close()

	var state map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state["phase"] != string(session.PhaseLobby) {
		t.Errorf("phase = %v, want %s", state["phase"], session.PhaseLobby)
	}
	if state["masked_word"] != "_ _ _ _ _" {
		t.Errorf("masked_word = %v", state["masked_word"])
	}
	if state["connections"] != float64(1) {
		t.Errorf("connections = %v, want 1", state["connections"])
	}
	if _, leaked := state["passcode"]; leaked {
		t.Error("state must not expose the passcode")
	}
}
