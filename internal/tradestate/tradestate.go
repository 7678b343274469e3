// Package tradestate implements §4.E: exclusive-transition trade lifecycle
// and the in-memory duplicate-notification suppression set.
package tradestate

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/model"
	"mtfscanner/internal/types"
)

// Store is the persistence boundary the state machine depends on.
type Store interface {
	LoadClosedTradeIDs(ctx context.Context) (map[int64]struct{}, error)
	CloseTrade(ctx context.Context, tradeID int64, state types.TradeState, closeTimeUTC time.Time, closePrice decimal.Decimal, reason string) (model.Trade, error)
	UpdateSLTP(ctx context.Context, tradeID int64, newSL, newTP *decimal.Decimal) (model.Trade, error)
}

// Machine holds the in-memory closed-trade set that is the within-process
// authority for duplicate-notification suppression; the database remains
// authoritative across restarts.
type Machine struct {
	mu     sync.RWMutex
	closed map[int64]struct{}
	store  Store
}

func New(store Store) *Machine {
	return &Machine{closed: make(map[int64]struct{}), store: store}
}

// Load reloads the closed-trade set from the database. Call once at startup.
func (m *Machine) Load(ctx context.Context) error {
	ids, err := m.store.LoadClosedTradeIDs(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = ids
	return nil
}

// CheckAndUpdate detects SL/TP crossing for an Open trade. It never mutates
// trade and has no effect if trade is not Open.
func CheckAndUpdate(trade model.Trade, currentPrice, candleHigh, candleLow decimal.Decimal) *model.TradeAction {
	if trade.State != types.TradeStateOpen {
		return nil
	}

	if trade.Direction == types.DirectionBuy {
		if candleLow.LessThanOrEqual(trade.StopLoss) {
			return &model.TradeAction{Kind: model.ActionCloseBySL, ClosePrice: trade.StopLoss, Reason: "SL crossed"}
		}
		if candleHigh.GreaterThanOrEqual(trade.TakeProfit) {
			return &model.TradeAction{Kind: model.ActionCloseByTP, ClosePrice: trade.TakeProfit, Reason: "TP crossed"}
		}
		return nil
	}

	if candleHigh.GreaterThanOrEqual(trade.StopLoss) {
		return &model.TradeAction{Kind: model.ActionCloseBySL, ClosePrice: trade.StopLoss, Reason: "SL crossed"}
	}
	if candleLow.LessThanOrEqual(trade.TakeProfit) {
		return &model.TradeAction{Kind: model.ActionCloseByTP, ClosePrice: trade.TakeProfit, Reason: "TP crossed"}
	}
	return nil
}

// Apply executes an Action against the persisted trade and records the
// resulting state for duplicate suppression when it is a close.
func (m *Machine) Apply(ctx context.Context, trade model.Trade, action model.TradeAction, now time.Time) (model.Trade, error) {
	switch action.Kind {
	case model.ActionCloseByTP:
		return m.applyClose(ctx, trade.ID, types.TradeStateClosedByTp, action, now)
	case model.ActionCloseBySL:
		return m.applyClose(ctx, trade.ID, types.TradeStateClosedBySl, action, now)
	case model.ActionCloseManual:
		return m.applyClose(ctx, trade.ID, types.TradeStateClosedManual, action, now)
	case model.ActionUpdateSLTP:
		return m.store.UpdateSLTP(ctx, trade.ID, action.NewSL, action.NewTP)
	default:
		return trade, nil
	}
}

func (m *Machine) applyClose(ctx context.Context, tradeID int64, state types.TradeState, action model.TradeAction, now time.Time) (model.Trade, error) {
	updated, err := m.store.CloseTrade(ctx, tradeID, state, now, action.ClosePrice, action.Reason)
	if err != nil {
		return model.Trade{}, err
	}
	m.mu.Lock()
	m.closed[tradeID] = struct{}{}
	m.mu.Unlock()
	return updated, nil
}

// IsClosed reports whether tradeID is known to be closed within this
// process's lifetime.
func (m *Machine) IsClosed(tradeID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.closed[tradeID]
	return ok
}

// ShouldSendTPNotification reports whether the transition to newState is
// the single Open->ClosedByTp crossing that should notify.
func (m *Machine) ShouldSendTPNotification(tradeID int64, newState types.TradeState, wasClosed bool) bool {
	return newState == types.TradeStateClosedByTp && !wasClosed
}
