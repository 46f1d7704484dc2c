package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/juju/errors"

	"recordhub/internal/events"
	"recordhub/pkg/domain"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second
	// pongDelay is how long the client has to answer a ping.
	pongDelay = 90 * time.Second
	// pingPeriod must be shorter than pongDelay.
	pingPeriod = 60 * time.Second
)

var websocketUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func websocketServer(w http.ResponseWriter, req *http.Request, handler func(ws *websocket.Conn)) {
	conn, err := websocketUpgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Errorf("problem initiating websocket: %v", err)
		return
	}
	handler(conn)
}

// initialResult is the first frame of every subscription stream. Error is
// null when the subscription is live.
type initialResult struct {
	Error *errorBody `json:"error"`
}

// sendInitialError writes the first frame as a JSON line. A non-nil err also
// tells the client the stream is closing.
func sendInitialError(ws *websocket.Conn, err error) error {
	var result initialResult
	if err != nil {
		_, code := classify(err)
		result.Error = &errorBody{Error: err.Error(), Code: code}
	}
	body, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return errors.Annotatef(marshalErr, "cannot marshal error %#v", result)
	}
	body = append(body, '\n')

	writer, wErr := ws.NextWriter(websocket.TextMessage)
	if wErr != nil {
		return errors.Annotate(wErr, "problem getting writer")
	}
	_, wErr = writer.Write(body)
	if cErr := writer.Close(); wErr == nil {
		wErr = cErr
	}
	if err != nil {
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""))
	}
	return errors.Trace(wErr)
}

// subscriptionRequest turns the URL into a topic, a predicate and the
// variables it is evaluated with. Every query parameter except where becomes
// a variable.
func subscriptionRequest(r *http.Request) (string, events.Predicate, map[string]string, error) {
	topic := mux.Vars(r)["topic"]
	info, ok := events.LookupTopic(topic)
	if !ok {
		return "", nil, nil, domain.InvalidArgumentf("topic %q", topic)
	}
	predicate := info.PredicateFor()
	query := r.URL.Query()
	if info.FilterField != "" && query.Get(info.FilterField) == "" {
		return "", nil, nil, domain.InvalidArgumentf("topic %s requires %s", topic, info.FilterField)
	}
	if where := query.Get("where"); where != "" {
		compiled, err := events.CompileExpr(where)
		if err != nil {
			return "", nil, nil, errors.Trace(err)
		}
		predicate = events.All(predicate, compiled)
	}
	vars := make(map[string]string, len(query))
	for key, values := range query {
		if key == "where" || len(values) == 0 {
			continue
		}
		vars[key] = values[0]
	}
	return topic, predicate, vars, nil
}

func (s *Server) serveSubscription(w http.ResponseWriter, req *http.Request) {
	websocketServer(w, req, func(socket *websocket.Conn) {
		defer socket.Close()

		topic, predicate, vars, err := subscriptionRequest(req)
		if err != nil {
			_ = sendInitialError(socket, err)
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sub, err := s.bus.SubscribeContext(ctx, topic)
		if err != nil {
			_ = sendInitialError(socket, err)
			return
		}
		defer sub.Unsubscribe()

		// The subscription is registered before the nil error is sent, so
		// a client that has read the first line sees every later event.
		if err := sendInitialError(socket, nil); err != nil {
			logger.Debugf("closing subscription to %s: %v", topic, err)
			return
		}
		logger.Debugf("websocket subscribed to %s with vars %v", topic, vars)

		_ = socket.SetReadDeadline(time.Now().Add(pongDelay))
		socket.SetPongHandler(func(string) error {
			return socket.SetReadDeadline(time.Now().Add(pongDelay))
		})
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		gone := readUntilClosed(socket)
		out := events.Filter(ctx, sub, predicate, vars)
		for {
			select {
			case <-s.stop:
				_ = socket.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			case <-gone:
				return
			case <-ticker.C:
				if err := socket.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
					logger.Debugf("failed to write ping: %s", err)
					return
				}
			case event, ok := <-out:
				if !ok {
					return
				}
				_ = socket.SetWriteDeadline(time.Now().Add(writeWait))
				if err := socket.WriteJSON(event); err != nil {
					logger.Debugf("failed to write %s event: %v", topic, err)
					return
				}
			}
		}
	})
}

// readUntilClosed drains client frames so control frames are processed. The
// returned channel closes when the client goes away or the socket is closed.
func readUntilClosed(socket *websocket.Conn) <-chan struct{} {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := socket.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return gone
}
