package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sensorpipe/sensorpipe/internal/config"
)

const (
	// disconnectQuiesce is how long Disconnect waits for in-flight work, in ms.
	disconnectQuiesce = 250

	connectRetryInterval = 5 * time.Second
)

// Subscriber feeds MQTT messages into a Receiver.
type Subscriber struct {
	cfg           config.MQTTConfig
	recv          *Receiver
	retryInterval time.Duration
	ready         chan struct{}
	once          sync.Once
}

// NewSubscriber creates a Subscriber for the broker and topic in cfg.
func NewSubscriber(cfg config.MQTTConfig, r *Receiver) *Subscriber {
	return &Subscriber{
		cfg:           cfg,
		recv:          r,
		retryInterval: connectRetryInterval,
		ready:         make(chan struct{}),
	}
}

// Ready is closed after the first successful subscription.
func (s *Subscriber) Ready() <-chan struct{} { return s.ready }

// Run connects to the broker and subscribes, then blocks until ctx is
// cancelled and disconnects. A broker that is unreachable at startup is
// retried until it comes up or ctx is cancelled. The subscription is renewed
// on every reconnect. Messages that fail to decode or store are logged and
// dropped.
func (s *Subscriber) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
	}
	if pw := s.cfg.Password(); pw != "" {
		opts.SetPassword(pw)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(s.retryInterval)
	opts.SetCleanSession(true)
	opts.SetOnConnectHandler(s.subscribe)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("ingest: mqtt connection lost", "broker", s.cfg.Broker, "err", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
		// Only non-network failures such as a refused login end the retry.
		if err := token.Error(); err != nil {
			return fmt.Errorf("ingest: connect %s: %w", s.cfg.Broker, err)
		}
		slog.Info("ingest: mqtt connected", "broker", s.cfg.Broker, "client_id", s.cfg.ClientID)
	case <-ctx.Done():
		client.Disconnect(0)
		slog.Info("ingest: mqtt never connected", "broker", s.cfg.Broker)
		return nil
	}

	<-ctx.Done()
	client.Disconnect(disconnectQuiesce)
	slog.Info("ingest: mqtt disconnected", "broker", s.cfg.Broker)
	return nil
}

func (s *Subscriber) subscribe(c mqtt.Client) {
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage)
	if token.Wait() && token.Error() != nil {
		slog.Error("ingest: subscribe failed", "topic", s.cfg.Topic, "err", token.Error())
		return
	}
	slog.Info("ingest: subscribed", "topic", s.cfg.Topic, "qos", s.cfg.QoS)
	s.once.Do(func() { close(s.ready) })
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	if err := s.recv.Handle(msg.Topic(), msg.Payload()); err != nil {
		slog.Warn("ingest: message dropped", "topic", msg.Topic(), "err", err)
	}
}
