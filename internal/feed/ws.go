// Package feed ingests execution events from a matching engine's WebSocket
// event stream, for deployments without a broker between the engine and this
// job. Events go through the same handler as the bus subscriber.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openexch/tradelogd/internal/bus/kafka"
	"github.com/openexch/tradelogd/internal/domain"
)

const (
	handshakeTimeout = 15 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	reconnectDelay   = 2 * time.Second
)

// WSFeed reads JSON execution events from a WebSocket endpoint and invokes
// the handler per message. Reconnects on disconnect.
type WSFeed struct {
	wsURL   string
	handler kafka.EventHandler
	logger  *slog.Logger
}

// NewWSFeed creates a feed for the given endpoint.
func NewWSFeed(wsURL string, handler kafka.EventHandler, logger *slog.Logger) *WSFeed {
	return &WSFeed{
		wsURL:   wsURL,
		handler: handler,
		logger:  logger.With(slog.String("component", "ws_feed")),
	}
}

// Run connects and processes events until ctx is cancelled, reconnecting
// with a fixed delay on drop.
func (f *WSFeed) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := f.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Warn("event stream disconnected, reconnecting",
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *WSFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("feed: connect: %w", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Close the connection when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(handshakeTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	f.logger.Info("connected to event stream", slog.String("url", f.wsURL))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: %w: %s", domain.ErrWSDisconnect, err)
		}

		var event domain.ExecutionEvent
		if err := json.Unmarshal(data, &event); err != nil {
			f.logger.Error("dropping malformed event-stream message",
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := f.handler(ctx, event); err != nil {
			// No redelivery on a stream; log identity and move on.
			f.logger.Error("event handling failed",
				slog.Any("order_ids", event.OrderIDs()),
				slog.String("error", err.Error()),
			)
		}
	}
}
