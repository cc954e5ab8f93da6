package multiview

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// EventHub fans out layout events to in-process subscribers and streams them
// over WebSocket or SSE.
type EventHub struct {
	mu      sync.RWMutex
	subs    map[int]chan LayoutEvent
	next    int
	origins []string
}

// EventHubOption configures an EventHub.
type EventHubOption func(*EventHub)

// WithAllowedOrigins lists the browser origins allowed to open the event
// stream. "*" allows any origin. Without origins only same-origin requests
// are accepted.
func WithAllowedOrigins(origins ...string) EventHubOption {
	return func(h *EventHub) {
		for _, origin := range origins {
			if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
				h.origins = append(h.origins, origin)
			}
		}
	}
}

func NewEventHub(opts ...EventHubOption) *EventHub {
	h := &EventHub{subs: make(map[int]chan LayoutEvent)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AllowedOrigins returns the configured origins, in go-router's
// WebSocketConfig.Origins form.
func (h *EventHub) AllowedOrigins() []string {
	return append([]string(nil), h.origins...)
}

// LayoutUpdated satisfies RefreshHook. Slow subscribers miss events rather
// than block the caller.
func (h *EventHub) LayoutUpdated(_ context.Context, event LayoutEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of layout events and a cancel func.
func (h *EventHub) Subscribe() (<-chan LayoutEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan LayoutEvent, 8)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// upgrader builds the WebSocket upgrader. Without configured origins the
// Upgrader's nil CheckOrigin applies gorilla's same-origin policy.
func (h *EventHub) upgrader() *websocket.Upgrader {
	if len(h.origins) == 0 {
		return &websocket.Upgrader{}
	}
	return &websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range h.origins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}
		return false
	}}
}

// ServeWebSocket upgrades the request and streams layout events as JSON.
func (h *EventHub) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams layout events as Server-Sent Events, one data frame per
// event. The stream ends when the client goes away or a write fails.
func (h *EventHub) ServeSSE(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	events, cancel := h.Subscribe()
	defer cancel()
	flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSEFrame(w, event); err != nil {
				return
			}
			flush()
		}
	}
}

func writeSSEFrame(w io.Writer, event LayoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, "\n\n"...)
	_, err = w.Write(frame)
	return err
}

// NotificationsClient is the minimal publisher contract used to forward
// layout events to an external channel (MQTT, go-notifications, ...).
type NotificationsClient interface {
	PublishLayoutEvent(ctx context.Context, event LayoutEvent) error
}

// NotificationsHook forwards layout events to an external notifications client.
type NotificationsHook struct {
	Client NotificationsClient
	// Reasons limits forwarding to the listed reasons; empty forwards everything.
	Reasons []string
}

// LayoutUpdated publishes events to the configured notifications client.
func (h *NotificationsHook) LayoutUpdated(ctx context.Context, event LayoutEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	if len(h.Reasons) > 0 {
		matched := false
		for _, reason := range h.Reasons {
			if reason == event.Reason {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}
	}
	return h.Client.PublishLayoutEvent(ctx, event)
}

// MultiHook invokes every hook and joins their errors.
type MultiHook []RefreshHook

// LayoutUpdated fans the event out to each hook.
func (m MultiHook) LayoutUpdated(ctx context.Context, event LayoutEvent) error {
	var errs error
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.LayoutUpdated(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

type noopRefreshHook struct{}

func (noopRefreshHook) LayoutUpdated(context.Context, LayoutEvent) error {
	return nil
}
