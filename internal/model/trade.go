package model

import (
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/types"
)

// Trade is the lifecycle record owned by the database. In-memory copies
// returned from a store query are snapshots: callers must not mutate them
// and expect persistence to pick it up, all writes go back through Store.
type Trade struct {
	ID            int64
	SignalID      int64
	Alias         string
	VendorSymbol  string
	Direction     types.Direction
	PlannedEntry  decimal.Decimal
	ActualEntry   decimal.Decimal
	StopLoss      decimal.Decimal
	TakeProfit    decimal.Decimal
	State         types.TradeState
	OpenTimeUTC   time.Time
	CloseTimeUTC  *time.Time
	ClosePrice    *decimal.Decimal
	CloseReason   *string
}

func (t Trade) IsOpen() bool {
	return t.State == types.TradeStateOpen
}

// Heartbeat is an append-only liveness record.
type Heartbeat struct {
	ID             int64
	AtUTC          time.Time
	SymbolsScanned int
	Notes          string
}

// ErrorLog is an append-only audit record for §7's error taxonomy.
type ErrorLog struct {
	ID        int64
	AtUTC     time.Time
	Severity  string
	Component string
	Message   string
}
