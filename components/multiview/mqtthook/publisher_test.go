package mqtthook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-multiview/components/multiview"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error, complete bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if complete {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeClient struct {
	messages     []published
	err          error
	hang         bool
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	data, _ := payload.([]byte)
	c.messages = append(c.messages, published{topic: topic, qos: qos, payload: data})
	return newFakeToken(c.err, !c.hang)
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestPublishLayoutEvent(t *testing.T) {
	client := &fakeClient{}
	pub := New(client, Config{QoS: 1})

	event := multiview.LayoutEvent{LayoutID: "L1", Reason: multiview.ReasonBroadcast, Audience: multiview.AudienceAdmins}
	require.NoError(t, pub.PublishLayoutEvent(context.Background(), event))
	require.Len(t, client.messages, 1)
	assert.Equal(t, "multiview/layouts/broadcast", client.messages[0].topic)
	assert.Equal(t, byte(1), client.messages[0].qos)

	var decoded multiview.LayoutEvent
	require.NoError(t, json.Unmarshal(client.messages[0].payload, &decoded))
	assert.Equal(t, "L1", decoded.LayoutID)
	assert.Equal(t, multiview.AudienceAdmins, decoded.Audience)

	pub.Close()
	assert.True(t, client.disconnected)
}

func TestPublishLayoutEventErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	pub := New(client, Config{Topic: "ops/"})
	err := pub.PublishLayoutEvent(context.Background(), multiview.LayoutEvent{Reason: multiview.ReasonCommit})
	require.Error(t, err)
	assert.Equal(t, "ops/commit", client.messages[0].topic)

	hanging := New(&fakeClient{hang: true}, Config{Timeout: 10 * time.Millisecond})
	assert.Error(t, hanging.PublishLayoutEvent(context.Background(), multiview.LayoutEvent{}))

	var nilPub *Publisher
	assert.Error(t, nilPub.PublishLayoutEvent(context.Background(), multiview.LayoutEvent{}))
}

func TestPublisherAsNotificationsHook(t *testing.T) {
	client := &fakeClient{}
	hook := &multiview.NotificationsHook{
		Client:  New(client, Config{}),
		Reasons: []string{multiview.ReasonBroadcast},
	}
	require.NoError(t, hook.LayoutUpdated(context.Background(), multiview.LayoutEvent{Reason: multiview.ReasonSelect}))
	require.NoError(t, hook.LayoutUpdated(context.Background(), multiview.LayoutEvent{Reason: multiview.ReasonBroadcast}))
	assert.Len(t, client.messages, 1)
}

func TestConnectRequiresBroker(t *testing.T) {
	_, err := Connect(Config{})
	assert.Error(t, err)
}
