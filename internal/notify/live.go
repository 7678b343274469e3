package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"mtfscanner/internal/model"
)

// Event is one live-feed message broadcast to every connected websocket
// client. Adapted from the teacher's marketdata.Bus pub-sub.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Bus fans out Events to any number of subscribers, dropping an event for
// a slow subscriber rather than blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 100)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Live publishes every notifier call onto a Bus instead of an external
// transport; cmd/scanner wires a websocket handler over the same Bus so
// connected clients see signals/trades as they happen.
type Live struct {
	Bus *Bus
}

func NewLive(bus *Bus) *Live {
	return &Live{Bus: bus}
}

func (l *Live) SignalAlert(ctx context.Context, s model.Signal) error {
	l.Bus.Publish(Event{Type: "signal", Data: s})
	return nil
}

func (l *Live) UpdateAlert(ctx context.Context, t model.Trade, reason string) error {
	l.Bus.Publish(Event{Type: "trade_update", Data: map[string]any{"trade": t, "reason": reason}})
	return nil
}

func (l *Live) CloseAlert(ctx context.Context, t model.Trade, closeType string) error {
	l.Bus.Publish(Event{Type: "trade_close", Data: map[string]any{"trade": t, "close_type": closeType}})
	return nil
}

func (l *Live) Heartbeat(ctx context.Context, at time.Time) error {
	l.Bus.Publish(Event{Type: "heartbeat", Data: map[string]any{"at": at}})
	return nil
}

func (l *Live) ErrorAlert(ctx context.Context, severity, component, message string) error {
	l.Bus.Publish(Event{Type: "error", Data: map[string]any{"severity": severity, "component": component, "message": message}})
	return nil
}

// WSHandler upgrades /live connections and streams Bus events as JSON
// frames until the client disconnects.
type WSHandler struct {
	bus      *Bus
	upgrader websocket.Upgrader
}

func NewWSHandler(bus *Bus) *WSHandler {
	return &WSHandler{
		bus:      bus,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := h.bus.Subscribe()
	defer h.bus.Unsubscribe(ch)

	for evt := range ch {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(evt); err != nil {
			return
		}
	}
}
