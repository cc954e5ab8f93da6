package multiview

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHubSubscribe(t *testing.T) {
	hub := NewEventHub()
	ch, cancel := hub.Subscribe()
	defer cancel()
	event := LayoutEvent{LayoutID: "layout-overview", Reason: ReasonSelect}
	if err := hub.LayoutUpdated(context.Background(), event); err != nil {
		t.Fatalf("LayoutUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.LayoutID != event.LayoutID {
			t.Fatalf("expected layout %s, got %s", event.LayoutID, e.LayoutID)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestEventHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewEventHub()
	ch, cancel := hub.Subscribe()
	for i := 0; i < 20; i++ {
		require.NoError(t, hub.LayoutUpdated(context.Background(), LayoutEvent{Reason: ReasonCommit}))
	}
	assert.Len(t, ch, 8)

	cancel()
	cancel()
	for range ch {
	}
}

func TestEventHubServeWebSocket(t *testing.T) {
	hub := NewEventHub()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered after the upgrade completes.
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		subs := len(hub.subs)
		hub.mu.RUnlock()
		if subs > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.NoError(t, hub.LayoutUpdated(context.Background(), LayoutEvent{LayoutID: "abc", Reason: ReasonBroadcast, Audience: AudienceAdmins}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received LayoutEvent
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, "abc", received.LayoutID)
	assert.Equal(t, AudienceAdmins, received.Audience)
}

func TestEventHubServeSSE(t *testing.T) {
	hub := NewEventHub()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeSSE))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.NoError(t, hub.LayoutUpdated(context.Background(), LayoutEvent{LayoutID: "sse", Reason: ReasonCommit}))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))
	var received LayoutEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &received))
	assert.Equal(t, "sse", received.LayoutID)
}

func TestEventHubWebSocketOrigins(t *testing.T) {
	cases := []struct {
		name    string
		hub     *EventHub
		origin  string
		allowed bool
	}{
		{name: "same origin default rejects foreign", hub: NewEventHub(), origin: "https://evil.example"},
		{name: "no origin header", hub: NewEventHub(WithAllowedOrigins("https://wall.example")), allowed: true},
		{name: "listed origin", hub: NewEventHub(WithAllowedOrigins(" https://wall.example/ ")), origin: "https://wall.example", allowed: true},
		{name: "unlisted origin", hub: NewEventHub(WithAllowedOrigins("https://wall.example")), origin: "https://evil.example"},
		{name: "wildcard", hub: NewEventHub(WithAllowedOrigins("*")), origin: "https://anywhere.example", allowed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tc.hub.ServeWebSocket))
			defer server.Close()

			header := http.Header{}
			if tc.origin != "" {
				header.Set("Origin", tc.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), header)
			if tc.allowed {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestEventHubAllowedOriginsIsCopy(t *testing.T) {
	hub := NewEventHub(WithAllowedOrigins("https://wall.example", "  "))
	origins := hub.AllowedOrigins()
	require.Equal(t, []string{"https://wall.example"}, origins)
	origins[0] = "*"
	assert.Equal(t, []string{"https://wall.example"}, hub.AllowedOrigins())
	assert.Nil(t, NewEventHub().AllowedOrigins())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("client gone") }

func TestWriteSSEFrame(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, writeSSEFrame(&buf, LayoutEvent{LayoutID: "layout-overview", Reason: ReasonSelect}))
	frame := buf.String()
	assert.True(t, strings.HasPrefix(frame, "data: {"))
	assert.True(t, strings.HasSuffix(frame, "}\n\n"))
	assert.Contains(t, frame, `"layout_id":"layout-overview"`)

	assert.Error(t, writeSSEFrame(brokenWriter{}, LayoutEvent{Reason: ReasonCommit}))
}

type stubNotifications struct {
	events []LayoutEvent
	err    error
}

func (s *stubNotifications) PublishLayoutEvent(_ context.Context, event LayoutEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func TestNotificationsHookFiltersReasons(t *testing.T) {
	client := &stubNotifications{}
	hook := &NotificationsHook{Client: client, Reasons: []string{ReasonBroadcast}}

	require.NoError(t, hook.LayoutUpdated(context.Background(), LayoutEvent{Reason: ReasonCommit}))
	require.NoError(t, hook.LayoutUpdated(context.Background(), LayoutEvent{Reason: ReasonBroadcast}))
	require.Len(t, client.events, 1)
	assert.Equal(t, ReasonBroadcast, client.events[0].Reason)

	var empty *NotificationsHook
	assert.NoError(t, empty.LayoutUpdated(context.Background(), LayoutEvent{}))
}

func TestMultiHookJoinsErrors(t *testing.T) {
	first := &stubNotifications{err: errors.New("mqtt down")}
	second := &stubNotifications{}
	hooks := MultiHook{&NotificationsHook{Client: first}, nil, &NotificationsHook{Client: second}}

	err := hooks.LayoutUpdated(context.Background(), LayoutEvent{Reason: ReasonCreate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt down")
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}
