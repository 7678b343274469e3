// Package sltp implements §4.C: ATR+structure+historical-MAE/MFE placement
// for new signals, and rule-based adjustment for open trades.
package sltp

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/indicators"
	"mtfscanner/internal/model"
	"mtfscanner/internal/types"
)

const (
	atrMultSL   = "1.5"
	atrMultTP   = "2.5"
	atrPeriod   = 14
	swingWindow = 5
)

// MAEMFEStats summarizes the last up-to-100 closed trades for one
// (alias, direction) pair.
type MAEMFEStats struct {
	MedianMAE   decimal.Decimal
	MeanMAE     decimal.Decimal
	MedianMFE   decimal.Decimal
	MeanMFE     decimal.Decimal
	SampleCount int
}

// StatsProvider is implemented by internal/store.
type StatsProvider interface {
	GetMAEMFEStats(ctx context.Context, alias string, direction types.Direction) (MAEMFEStats, error)
}

// Config holds the tunables named in spec §4.C.
type Config struct {
	RiskFraction  decimal.Decimal
	DefaultEquity decimal.Decimal
}

// Estimator implements EstimateForNewSignal, EvaluateAdjustment, and
// RiskAndLot over a StatsProvider.
type Estimator struct {
	stats StatsProvider
	cfg   Config
}

func New(stats StatsProvider, cfg Config) *Estimator {
	return &Estimator{stats: stats, cfg: cfg}
}

// EstimateForNewSignal computes (sl, tp) for a new signal per spec §4.C.
func (e *Estimator) EstimateForNewSignal(ctx context.Context, mtc model.MultiTimeframeContext, direction types.Direction, entry decimal.Decimal) (sl, tp decimal.Decimal, err error) {
	avgATR := averageATR(mtc)

	stats, statsErr := e.stats.GetMAEMFEStats(ctx, mtc.Alias, direction)
	haveMFE := statsErr == nil && stats.SampleCount > 0 && !stats.MedianMFE.IsZero()

	highs, lows := indicators.SwingPoints(mtc.H4.Candles, swingWindow)

	slMult := decimal.RequireFromString(atrMultSL)
	tpMult := decimal.RequireFromString(atrMultTP)

	if direction == types.DirectionBuy {
		nearestLow, found := minBelow(lows, entry)
		if !found {
			nearestLow = entry.Mul(decimal.NewFromFloat(0.98))
		}
		sl = nearestLow.Sub(avgATR.Mul(slMult))
		if haveMFE {
			tp = entry.Add(stats.MedianMFE)
		} else {
			tp = entry.Add(avgATR.Mul(tpMult))
		}
		return sl, tp, nil
	}

	nearestHigh, found := maxAbove(highs, entry)
	if !found {
		nearestHigh = entry.Mul(decimal.NewFromFloat(1.02))
	}
	sl = nearestHigh.Add(avgATR.Mul(slMult))
	if haveMFE {
		tp = entry.Sub(stats.MedianMFE)
	} else {
		tp = entry.Sub(avgATR.Mul(tpMult))
	}
	return sl, tp, nil
}

// Adjustment is the outcome of EvaluateAdjustment: either a new SL or an
// early-close instruction, never both.
type Adjustment struct {
	NewSL  *decimal.Decimal
	Close  bool
	Reason string
}

// EvaluateAdjustment implements the breakeven/trail/time-stop ladder. Returns
// nil when none of the rules apply.
func (e *Estimator) EvaluateAdjustment(trade model.Trade, currentPrice decimal.Decimal, h4 model.CandleSeries, now time.Time) *Adjustment {
	slDistance := trade.PlannedEntry.Sub(trade.StopLoss).Abs()
	var profitR decimal.Decimal
	if slDistance.IsPositive() {
		profitR = currentPrice.Sub(trade.PlannedEntry).Abs().Div(slDistance)
	}

	atOrBeyondBreakeven := trade.StopLoss.Equal(trade.PlannedEntry)
	if trade.Direction == types.DirectionBuy && trade.StopLoss.GreaterThan(trade.PlannedEntry) {
		atOrBeyondBreakeven = true
	}
	if trade.Direction == types.DirectionSell && trade.StopLoss.LessThan(trade.PlannedEntry) {
		atOrBeyondBreakeven = true
	}
	if profitR.GreaterThan(decimal.NewFromInt(1)) && !atOrBeyondBreakeven {
		sl := trade.PlannedEntry
		return &Adjustment{NewSL: &sl, Reason: "moved to breakeven"}
	}

	if profitR.GreaterThan(decimal.NewFromInt(2)) {
		atr := indicators.LastATR(h4.Candles, atrPeriod)
		var trail decimal.Decimal
		if trade.Direction == types.DirectionBuy {
			trail = currentPrice.Sub(atr)
			if trail.GreaterThan(trade.StopLoss) {
				return &Adjustment{NewSL: &trail, Reason: "ATR trail"}
			}
		} else {
			trail = currentPrice.Add(atr)
			if trail.LessThan(trade.StopLoss) {
				return &Adjustment{NewSL: &trail, Reason: "ATR trail"}
			}
		}
	}

	if now.Sub(trade.OpenTimeUTC) > 7*24*time.Hour {
		return &Adjustment{Close: true, Reason: "Trade open > 7 days"}
	}

	return nil
}

// RiskAndLot implements §4.C's risk_and_lot.
func (e *Estimator) RiskAndLot(entry, sl decimal.Decimal) (riskAmount, lotSize decimal.Decimal) {
	riskAmount = e.cfg.DefaultEquity.Mul(e.cfg.RiskFraction)
	slDistance := entry.Sub(sl).Abs()
	if slDistance.IsZero() {
		return riskAmount, decimal.NewFromFloat(0.01)
	}
	lotSize = riskAmount.Div(slDistance).Round(2)
	return riskAmount, lotSize
}

func averageATR(mtc model.MultiTimeframeContext) decimal.Decimal {
	h4ATR := indicators.LastATR(mtc.H4.Candles, atrPeriod)
	h1ATR := indicators.LastATR(mtc.H1.Candles, atrPeriod)
	return h4ATR.Add(h1ATR).Div(decimal.NewFromInt(2))
}

func minBelow(values []float64, entry decimal.Decimal) (decimal.Decimal, bool) {
	var min decimal.Decimal
	found := false
	e, _ := entry.Float64()
	for _, v := range values {
		if v < e {
			d := decimal.NewFromFloat(v)
			if !found || d.LessThan(min) {
				min = d
				found = true
			}
		}
	}
	return min, found
}

func maxAbove(values []float64, entry decimal.Decimal) (decimal.Decimal, bool) {
	var max decimal.Decimal
	found := false
	e, _ := entry.Float64()
	for _, v := range values {
		if v > e {
			d := decimal.NewFromFloat(v)
			if !found || d.GreaterThan(max) {
				max = d
				found = true
			}
		}
	}
	return max, found
}
