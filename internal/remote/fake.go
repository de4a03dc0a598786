package remote

import (
	kitlog "github.com/go-kit/kit/log"
)

// FakeSubscriber routes injected messages through the same topic mapping as
// the real subscriber.
type FakeSubscriber struct {
	d *dispatcher

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSubscriber creates a connected FakeSubscriber.
func NewFakeSubscriber(prefix, name string, handler Handler) *FakeSubscriber {
	return &FakeSubscriber{
		d:         newDispatcher(prefix, name, handler, kitlog.NewNopLogger()),
		Connected: true,
	}
}

// Deliver simulates a message arriving on topic. It reports whether the
// topic named a button.
func (f *FakeSubscriber) Deliver(topic string) bool {
	return f.d.deliver(topic)
}

// IsConnected reports whether the fake is "connected".
func (f *FakeSubscriber) IsConnected() bool {
	return f.Connected
}

// Close marks the subscriber as closed.
func (f *FakeSubscriber) Close() error {
	f.Closed = true
	f.Connected = false
	return nil
}
