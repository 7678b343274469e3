package notify

import (
	"context"
	"time"

	"mtfscanner/internal/model"
)

// Noop discards every call. Used in tests.
type Noop struct{}

func (Noop) SignalAlert(context.Context, model.Signal) error                 { return nil }
func (Noop) UpdateAlert(context.Context, model.Trade, string) error          { return nil }
func (Noop) CloseAlert(context.Context, model.Trade, string) error           { return nil }
func (Noop) Heartbeat(context.Context, time.Time) error                      { return nil }
func (Noop) ErrorAlert(context.Context, string, string, string) error        { return nil }
