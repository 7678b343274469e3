// Package notify implements the §6 Notifier collaborator: outbound alerts
// for new signals, trade updates, closes, heartbeats, and error events.
package notify

import (
	"context"
	"time"

	"mtfscanner/internal/model"
)

// Notifier is the external interface §6 names. Implementations must not
// block the scan loop for longer than their own internal timeout.
type Notifier interface {
	SignalAlert(ctx context.Context, s model.Signal) error
	UpdateAlert(ctx context.Context, t model.Trade, reason string) error
	CloseAlert(ctx context.Context, t model.Trade, closeType string) error
	Heartbeat(ctx context.Context, at time.Time) error
	ErrorAlert(ctx context.Context, severity, component, message string) error
}

// Multi fans every call out to each Notifier in order, collecting the
// first error but still attempting the rest so one broken transport
// doesn't silence the others.
type Multi struct {
	Notifiers []Notifier
}

func (m Multi) SignalAlert(ctx context.Context, s model.Signal) error {
	var firstErr error
	for _, n := range m.Notifiers {
		if err := n.SignalAlert(ctx, s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) UpdateAlert(ctx context.Context, t model.Trade, reason string) error {
	var firstErr error
	for _, n := range m.Notifiers {
		if err := n.UpdateAlert(ctx, t, reason); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) CloseAlert(ctx context.Context, t model.Trade, closeType string) error {
	var firstErr error
	for _, n := range m.Notifiers {
		if err := n.CloseAlert(ctx, t, closeType); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Heartbeat(ctx context.Context, at time.Time) error {
	var firstErr error
	for _, n := range m.Notifiers {
		if err := n.Heartbeat(ctx, at); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) ErrorAlert(ctx context.Context, severity, component, message string) error {
	var firstErr error
	for _, n := range m.Notifiers {
		if err := n.ErrorAlert(ctx, severity, component, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
