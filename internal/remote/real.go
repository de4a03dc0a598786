package remote

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

// Options configures a RealSubscriber.
type Options struct {
	Broker   string
	Prefix   string
	Name     string
	ClientID string
	Username string
	Password string

	// ConnectTimeout bounds the initial connect. Zero means 10 seconds.
	ConnectTimeout time.Duration
}

func (o Options) connectTimeout() time.Duration {
	if o.ConnectTimeout > 0 {
		return o.ConnectTimeout
	}
	return 10 * time.Second
}

// RealSubscriber listens for button presses on an MQTT broker.
type RealSubscriber struct {
	client paho.Client
	logger kitlog.Logger
}

// NewRealSubscriber connects to the broker and subscribes to the button
// topics. Subscriptions are renewed on every reconnect.
func NewRealSubscriber(opts Options, handler Handler, logger kitlog.Logger) (*RealSubscriber, error) {
	logger = kitlog.With(logger, "component", "remote")
	d := newDispatcher(opts.Prefix, opts.Name, handler, logger)

	filters := make(map[string]byte, len(d.topics))
	for topic := range d.topics {
		filters[topic] = 0
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetDefaultPublishHandler(func(_ paho.Client, msg paho.Message) {
			d.deliver(msg.Topic())
		}).
		SetOnConnectHandler(func(c paho.Client) {
			token := c.SubscribeMultiple(filters, nil)
			if !token.WaitTimeout(5 * time.Second) {
				level.Warn(logger).Log("msg", "subscribe timeout")
				return
			}
			if err := token.Error(); err != nil {
				level.Warn(logger).Log("msg", "subscribe failed", "err", err)
				return
			}
			level.Info(logger).Log("msg", "subscribed", "broker", opts.Broker, "topics", len(filters))
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			level.Warn(logger).Log("msg", "connection lost", "err", err)
		})

	client := paho.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(opts.connectTimeout()) {
		// Stop the background connect retries.
		client.Disconnect(0)
		return nil, errors.New("connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, errors.Wrap(err, "connect to broker")
	}

	return &RealSubscriber{client: client, logger: logger}, nil
}

// IsConnected reports whether the client currently holds a connection.
func (s *RealSubscriber) IsConnected() bool {
	return s.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (s *RealSubscriber) Close() error {
	s.client.Disconnect(1000) // 1 second timeout
	return nil
}
