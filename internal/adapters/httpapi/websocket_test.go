package httpapi_test

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func (f *fixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	target := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readInitial reads the first line of a stream and returns its error field.
func readInitial(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, r, err := conn.NextReader()
	if err != nil {
		t.Fatalf("initial frame: %v", err)
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil {
		t.Fatalf("initial line: %v", err)
	}
	var result struct {
		Error map[string]any `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &result); err != nil {
		t.Fatalf("decode initial %q: %v", line, err)
	}
	return result.Error
}

type frame struct {
	Topic   string         `json:"topic"`
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func waitForSubscribers(t *testing.T, f *fixture, topic string, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for f.bus.Subscribers(topic) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers on %s, have %d", want, topic, f.bus.Subscribers(topic))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubscriptionStreamsFilteredEvents(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/api/v1/subscriptions/BookCreated?author_id=a1")
	if errBody := readInitial(t, conn); errBody != nil {
		t.Fatalf("unexpected initial error %v", errBody)
	}

	f.do(t, http.MethodPost, "/api/v1/books", `{"title":"Other","author_id":"a2","pages":1}`)
	f.do(t, http.MethodPost, "/api/v1/books", `{"title":"Mine","author_id":"a1","pages":2}`)

	got := readFrame(t, conn)
	if got.Topic != "BookCreated" || got.Action != "create" || got.Payload["title"] != "Mine" {
		t.Fatalf("unexpected frame %+v", got)
	}
}

func TestSubscriptionWhereExpression(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/api/v1/subscriptions/AuthorUpdated?where="+
		url.QueryEscape(`payload.age >= int(vars.min_age)`)+"&min_age=40")
	if errBody := readInitial(t, conn); errBody != nil {
		t.Fatalf("unexpected initial error %v", errBody)
	}
	f.do(t, http.MethodPost, "/api/v1/authors", `{"name":"Ada","surname":"Lovelace","age":36}`)
	f.do(t, http.MethodPut, "/api/v1/authors/id-1", `{"name":"Ada","surname":"Lovelace","age":37}`)
	f.do(t, http.MethodPut, "/api/v1/authors/id-1", `{"name":"Ada","surname":"King","age":41}`)

	got := readFrame(t, conn)
	if got.Payload["surname"] != "King" {
		t.Fatalf("unexpected frame %+v", got)
	}
}

func TestSubscriptionInitialErrors(t *testing.T) {
	f := newFixture(t)
	for path, code := range map[string]string{
		"/api/v1/subscriptions/NoSuchTopic": "invalid_argument",
		"/api/v1/subscriptions/BookCreated": "invalid_argument",
		"/api/v1/subscriptions/BookCreated?where=" + url.QueryEscape("payload.("): "invalid_argument",
	} {
		conn := f.dial(t, path)
		errBody := readInitial(t, conn)
		if errBody == nil || errBody["code"] != code {
			t.Fatalf("%s: expected %s error, got %v", path, code, errBody)
		}
	}
}

func TestClosingSocketUnsubscribes(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/api/v1/subscriptions/UserCreated")
	readInitial(t, conn)
	waitForSubscribers(t, f, "UserCreated", 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitForSubscribers(t, f, "UserCreated", 0)
}

func TestServerCloseEndsStreams(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/api/v1/subscriptions/UserCreated")
	readInitial(t, conn)
	waitForSubscribers(t, f, "UserCreated", 1)

	f.api.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
	waitForSubscribers(t, f, "UserCreated", 0)
}
