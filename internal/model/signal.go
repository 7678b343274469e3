package model

import (
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/types"
)

// Signal is an immutable record of a generated trade idea.
type Signal struct {
	ID             int64
	Alias          string
	VendorSymbol   string
	Direction      types.Direction
	GeneratedAtUTC time.Time
	EntryPrice     decimal.Decimal
	InitialSL      decimal.Decimal
	InitialTP      decimal.Decimal
	StrategyName   string
	Notes          string
	EstimatedRR    decimal.Decimal
}

// MultiTimeframeContext is the ephemeral per-cycle bundle the strategy
// engine evaluates. It is rebuilt every scan and never persisted.
type MultiTimeframeContext struct {
	Alias        string
	VendorSymbol string
	NowUTC       time.Time
	H4           CandleSeries
	H1           CandleSeries
	M30          CandleSeries
	M15          CandleSeries
	M5           CandleSeries
	M1           CandleSeries
	CurrentPrice decimal.Decimal
}
