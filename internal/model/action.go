package model

import "github.com/shopspring/decimal"

// ActionKind enumerates the outcomes §4.D and §4.E can produce for an open
// trade. A given Action carries exactly the fields its kind needs.
type ActionKind string

const (
	ActionCloseByTP   ActionKind = "close_by_tp"
	ActionCloseBySL   ActionKind = "close_by_sl"
	ActionCloseManual ActionKind = "close_manual"
	ActionUpdateSLTP  ActionKind = "update_sl_tp"
)

// TradeAction is the result of evaluating an open trade against current
// price/candle data: either a close (with a price and reason) or an SL/TP
// update (with one or both new levels set).
type TradeAction struct {
	Kind       ActionKind
	ClosePrice decimal.Decimal
	Reason     string
	NewSL      *decimal.Decimal
	NewTP      *decimal.Decimal
}
