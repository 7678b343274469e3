package scanner

import (
	"context"
	"strconv"
	"time"

	"mtfscanner/internal/applog"
	"mtfscanner/internal/model"
	"mtfscanner/internal/notify"
	"mtfscanner/internal/store"
)

// HeartbeatTicker periodically records a liveness row and dispatches a
// Heartbeat notification, grounded on heartbeat_service.py's
// send_heartbeats loop.
type HeartbeatTicker struct {
	Store    *store.Store
	Notifier notify.Notifier
	Symbols  map[string]string
	Interval time.Duration
}

func (h *HeartbeatTicker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.tick(ctx)
		}
	}
}

func (h *HeartbeatTicker) tick(ctx context.Context) {
	now := time.Now().UTC()

	open := 0
	for alias := range h.Symbols {
		trades, err := h.Store.GetOpenTrades(ctx, alias)
		if err != nil {
			applog.Warn("heartbeat: get open trades for %s: %v", alias, err)
			continue
		}
		open += len(trades)
	}

	if _, err := h.Store.InsertHeartbeat(ctx, model.Heartbeat{
		AtUTC:          now,
		SymbolsScanned: len(h.Symbols),
		Notes:          "open_trades=" + strconv.Itoa(open),
	}); err != nil {
		applog.Warn("heartbeat: insert failed: %v", err)
	}

	if err := h.Notifier.Heartbeat(ctx, now); err != nil {
		applog.Warn("heartbeat: notify failed: %v", err)
	}
}
