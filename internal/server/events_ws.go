package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/watchdeck/internal/events"
)

// EventsWSHandler pushes store events to connected WebSocket clients so the
// phone screens can re-render without polling.
type EventsWSHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsWSHandler creates a new events WebSocket handler
func NewEventsWSHandler(bus *events.Bus, log zerolog.Logger) *EventsWSHandler {
	return &EventsWSHandler{
		bus: bus,
		log: log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP upgrades the connection and streams bus events as JSON until the
// client disconnects. Events beyond what a slow client's buffer can hold are
// skipped rather than blocking the bus.
func (h *EventsWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	ctx := r.Context()

	ch := make(chan *events.Event, 64)
	unsubscribe := h.bus.SubscribeAll(func(e *events.Event) {
		select {
		case ch <- e:
		default:
			// Buffer full - skip, the client will catch up from a full
			// state fetch on reconnect.
		}
	})
	defer unsubscribe()

	h.log.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("WebSocket write failed, dropping client")
				return
			}
		}
	}
}
