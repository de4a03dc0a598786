// Package remote accepts button presses over MQTT. It only subscribes:
// nothing about the reservoir is ever published.
package remote

import (
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/sweeney/reservoir-monitor/internal/input"
)

// Subscriber is a live remote-button subscription.
type Subscriber interface {
	IsConnected() bool
	Close() error
}

// Handler receives one edge per remote press.
type Handler func(input.Button) bool

var topicSuffix = map[input.Button]string{
	input.Decrement:  "decrement",
	input.Increment:  "increment",
	input.ChangeMode: "mode",
}

// Topic returns the topic for one button, e.g. "reservoir/tank/button/mode".
func Topic(prefix, name string, b input.Button) string {
	return strings.Join([]string{prefix, name, "button", topicSuffix[b]}, "/")
}

// Topics returns every button topic mapped to its button.
func Topics(prefix, name string) map[string]input.Button {
	topics := make(map[string]input.Button, len(topicSuffix))
	for b := range topicSuffix {
		topics[Topic(prefix, name, b)] = b
	}
	return topics
}

// dispatcher turns incoming topics into edges.
type dispatcher struct {
	topics  map[string]input.Button
	handler Handler
	logger  kitlog.Logger
}

func newDispatcher(prefix, name string, handler Handler, logger kitlog.Logger) *dispatcher {
	return &dispatcher{
		topics:  Topics(prefix, name),
		handler: handler,
		logger:  logger,
	}
}

// deliver reports whether topic named a button. The payload is ignored: any
// message counts as one press.
func (d *dispatcher) deliver(topic string) bool {
	b, ok := d.topics[topic]
	if !ok {
		level.Debug(d.logger).Log("msg", "ignoring topic", "topic", topic)
		return false
	}
	accepted := d.handler(b)
	level.Debug(d.logger).Log("msg", "remote press", "button", b, "accepted", accepted)
	return true
}
