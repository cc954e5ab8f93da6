// Package mqtthook forwards multiview layout events to an MQTT broker.
package mqtthook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/goliatone/go-multiview/components/multiview"
)

// DefaultTopic is the topic prefix; the event reason is appended.
const DefaultTopic = "multiview/layouts"

// Config describes the broker connection.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
	Retained bool
	Timeout  time.Duration
}

// Client is the paho surface the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher implements multiview.NotificationsClient over MQTT.
type Publisher struct {
	client Client
	cfg    Config
}

var _ multiview.NotificationsClient = (*Publisher)(nil)

// Connect dials the broker and returns a ready publisher.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtthook: broker is required")
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtthook: connect %s: %w", cfg.Broker, token.Error())
	}
	return New(client, cfg), nil
}

// New wraps an already connected client.
func New(client Client, cfg Config) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Publisher{client: client, cfg: cfg}
}

// Topic returns the topic an event with reason is published to.
func (p *Publisher) Topic(reason string) string {
	topic := strings.TrimRight(p.cfg.Topic, "/")
	if reason == "" {
		return topic
	}
	return topic + "/" + reason
}

// PublishLayoutEvent encodes event as JSON and publishes it.
func (p *Publisher) PublishLayoutEvent(ctx context.Context, event multiview.LayoutEvent) error {
	if p == nil || p.client == nil {
		return errors.New("mqtthook: publisher not connected")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("mqtthook: encode event: %w", err)
	}
	topic := p.Topic(event.Reason)
	token := p.client.Publish(topic, p.cfg.QoS, p.cfg.Retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.cfg.Timeout):
		return fmt.Errorf("mqtthook: publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtthook: publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p != nil && p.client != nil {
		p.client.Disconnect(250)
	}
}
