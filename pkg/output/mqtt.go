package output

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"

	"github.com/getmockd/schemafaker/internal/id"
	"github.com/getmockd/schemafaker/pkg/generator"
)

// DefaultMQTTConnectTimeout bounds the broker connection.
const DefaultMQTTConnectTimeout = 5 * time.Second

// Topic placeholders expanded per message.
const (
	TopicSchema = "{schema}"
	TopicIndex  = "{index}"
)

// MQTTConfig configures PublishMQTT.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. "tcp://localhost:1883".
	Broker string
	// Topic may contain {schema} and {index}.
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte
	Retain   bool
	// ConnectTimeout defaults to DefaultMQTTConnectTimeout.
	ConnectTimeout time.Duration
}

// Validate checks the configuration.
func (c MQTTConfig) Validate() error {
	var errs []error
	if c.Broker == "" {
		errs = append(errs, errors.New("mqtt broker is required"))
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("mqtt topic is required"))
	}
	if c.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.QoS))
	}
	if c.ConnectTimeout < 0 {
		errs = append(errs, errors.New("mqtt connect timeout cannot be negative"))
	}
	return errors.Join(errs...)
}

// topicFor expands the topic placeholders for the i-th message.
func (c MQTTConfig) topicFor(schemaName string, i int) string {
	return strings.NewReplacer(TopicSchema, schemaName, TopicIndex, strconv.Itoa(i)).Replace(c.Topic)
}

// PublishMQTT connects to the broker and publishes each instance as a JSON
// message. It returns the number of messages the broker acknowledged.
func PublishMQTT(ctx context.Context, cfg MQTTConfig, schemaName string, items []*generator.Instance) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultMQTTConnectTimeout
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "schemafaker-" + id.UUID()[:8]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(timeout)
	opts.SetAutoReconnect(false)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if err := waitToken(ctx, client.Connect()); err != nil {
		return 0, fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, err)
	}
	defer client.Disconnect(250)

	for i, in := range items {
		payload, err := json.Marshal(in)
		if err != nil {
			return i, fmt.Errorf("failed to encode item %d: %w", i, err)
		}
		topic := cfg.topicFor(schemaName, i)
		if err := waitToken(ctx, client.Publish(topic, cfg.QoS, cfg.Retain, payload)); err != nil {
			return i, fmt.Errorf("failed to publish item %d to %s: %w", i, topic, err)
		}
	}
	return len(items), nil
}

// waitToken blocks until the token completes or ctx is done.
func waitToken(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
