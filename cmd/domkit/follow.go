package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-go/domkit/pkg/hub"
	"github.com/vango-go/domkit/pkg/loop"
	"github.com/vango-go/domkit/pkg/quote"
)

// bridgeFrame is a frame sent by the server bridge.
type bridgeFrame struct {
	Op    string          `json:"op"`
	Hub   string          `json:"hub"`
	Topic string          `json:"topic"`
	Label string          `json:"label"`
	Data  json.RawMessage `json:"data"`
	Of    string          `json:"of"`
	Error string          `json:"error"`
}

// follower replays remote quote events on a local hub.
type follower struct {
	conn    *websocket.Conn
	lp      *loop.Loop
	hubName string
	out     io.Writer
	logger  *slog.Logger

	once sync.Once
	done chan struct{}
}

// dialFollower connects to the bridge, subscribes to quote events and
// starts forwarding them.
func dialFollower(ctx context.Context, url, token string, lp *loop.Loop, hubName string, out io.Writer) (*follower, error) {
	header := http.Header{}
	header.Set("X-Auth-Token", token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	if err := conn.WriteJSON(map[string]string{"op": "sub", "topic": quote.Topic}); err != nil {
		conn.Close()
		return nil, err
	}
	var ack bridgeFrame
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, err
	}
	if ack.Op != "ack" {
		conn.Close()
		return nil, fmt.Errorf("bridge refused subscription: %s", ack.Error)
	}

	f := &follower{
		conn:    conn,
		lp:      lp,
		hubName: hubName,
		out:     out,
		logger:  slog.Default().With("component", "follower"),
		done:    make(chan struct{}),
	}
	go f.readLoop()
	return f, nil
}

func (f *follower) readLoop() {
	defer close(f.done)
	for {
		var frame bridgeFrame
		if err := f.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				f.logger.Debug("bridge read ended", "error", err)
			}
			return
		}
		if frame.Op != "msg" || frame.Topic != quote.Topic {
			continue
		}

		var q quote.Quote
		if err := json.Unmarshal(frame.Data, &q); err != nil {
			f.logger.Warn("undecodable quote event", "label", frame.Label, "error", err)
			continue
		}
		fmt.Fprintf(f.out, "event %s #%d\n", frame.Label, q.ID)

		label := frame.Label
		f.lp.Post(func() {
			hub.Must(f.hubName).Publish(quote.Topic, label, q)
		})
	}
}

// Close stops forwarding and waits for the reader to exit.
func (f *follower) Close() {
	f.once.Do(func() {
		_ = f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	})
	<-f.done
}
