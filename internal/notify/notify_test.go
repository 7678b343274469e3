package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtfscanner/internal/model"
)

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) SignalAlert(ctx context.Context, s model.Signal) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) UpdateAlert(ctx context.Context, t model.Trade, reason string) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) CloseAlert(ctx context.Context, t model.Trade, closeType string) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) Heartbeat(ctx context.Context, at time.Time) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) ErrorAlert(ctx context.Context, severity, component, message string) error {
	c.calls++
	return c.err
}

func TestMulti_FanOutCallsEveryNotifier(t *testing.T) {
	a := &countingNotifier{}
	b := &countingNotifier{}
	m := Multi{Notifiers: []Notifier{a, b}}

	err := m.SignalAlert(context.Background(), model.Signal{})
	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMulti_OneFailureDoesNotStopOthers(t *testing.T) {
	failing := &countingNotifier{err: errors.New("boom")}
	healthy := &countingNotifier{}
	m := Multi{Notifiers: []Notifier{failing, healthy}}

	err := m.SignalAlert(context.Background(), model.Signal{})
	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls, "a failing notifier must not prevent the rest from being attempted")
}

func TestNoop_NeverErrors(t *testing.T) {
	var n Noop
	assert.NoError(t, n.SignalAlert(context.Background(), model.Signal{}))
	assert.NoError(t, n.UpdateAlert(context.Background(), model.Trade{}, "x"))
	assert.NoError(t, n.CloseAlert(context.Background(), model.Trade{}, "tp"))
	assert.NoError(t, n.Heartbeat(context.Background(), time.Now()))
	assert.NoError(t, n.ErrorAlert(context.Background(), "WARNING", "test", "msg"))
}

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	bus.Publish(Event{Type: "signal"})

	select {
	case evt := <-ch:
		assert.Equal(t, "signal", evt.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok, "channel must be closed after unsubscribe")
}

func TestBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	for i := 0; i < 200; i++ {
		bus.Publish(Event{Type: "signal"})
	}
	// publish must never block even once the subscriber's buffer fills
}

func TestLive_PublishesSignalEvent(t *testing.T) {
	bus := NewBus()
	live := NewLive(bus)
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	require.NoError(t, live.SignalAlert(context.Background(), model.Signal{Alias: "EURUSD"}))

	select {
	case evt := <-ch:
		assert.Equal(t, "signal", evt.Type)
	case <-time.After(time.Second):
		t.Fatal("expected signal event was not delivered")
	}
}
