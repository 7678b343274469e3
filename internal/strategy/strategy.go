// Package strategy implements §4.D: H4-close-gated multi-timeframe signal
// generation and open-trade re-evaluation.
package strategy

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/indicators"
	"mtfscanner/internal/model"
	"mtfscanner/internal/sltp"
	"mtfscanner/internal/types"
)

const (
	structureLookback = 20
	biasLookback      = 20
	strategyName      = "H4 FVG / OB + structure"
)

// Engine is the collaborator boundary the scan orchestrator depends on.
type Engine interface {
	EvaluateNewSignal(ctx context.Context, mtc model.MultiTimeframeContext) (*model.Signal, error)
	EvaluateOpenTrade(ctx context.Context, trade model.Trade, mtc model.MultiTimeframeContext) (*model.TradeAction, error)
}

// H4FVGStrategy is the only Engine implementation: bias from H4 FVG/OB
// counts, structure confirmation on H1/M15, entry confirmation on M5,
// gated on H4 candle close per alias.
type H4FVGStrategy struct {
	mu        sync.Mutex
	lastH4Ts  map[string]time.Time
	estimator *sltp.Estimator
}

func New(estimator *sltp.Estimator) *H4FVGStrategy {
	return &H4FVGStrategy{
		lastH4Ts:  make(map[string]time.Time),
		estimator: estimator,
	}
}

// EvaluateNewSignal runs the full §4.D pipeline. Returns (nil, nil) when no
// signal should be emitted this cycle.
func (s *H4FVGStrategy) EvaluateNewSignal(ctx context.Context, mtc model.MultiTimeframeContext) (*model.Signal, error) {
	if !s.h4Advanced(mtc) {
		return nil, nil
	}

	bias, ok := s.detectBias(mtc)
	if !ok {
		return nil, nil
	}

	if !s.confirmStructure(mtc, bias) {
		return nil, nil
	}

	if !s.confirmEntry(mtc, bias) {
		return nil, nil
	}

	entry := mtc.CurrentPrice
	sl, tp, err := s.estimator.EstimateForNewSignal(ctx, mtc, bias, entry)
	if err != nil {
		return nil, err
	}

	slDistance := entry.Sub(sl).Abs()
	var estimatedRR decimal.Decimal
	if slDistance.IsPositive() {
		estimatedRR = tp.Sub(entry).Abs().Div(slDistance)
	}

	return &model.Signal{
		Alias:          mtc.Alias,
		VendorSymbol:   mtc.VendorSymbol,
		Direction:      bias,
		GeneratedAtUTC: mtc.NowUTC,
		EntryPrice:     entry,
		InitialSL:      sl,
		InitialTP:      tp,
		StrategyName:   strategyName,
		EstimatedRR:    estimatedRR,
	}, nil
}

// EvaluateOpenTrade implements §4.D's evaluate_open_trade: SL/TP crossing
// takes precedence over estimator-driven adjustment, and SL takes
// precedence over TP within the same candle.
func (s *H4FVGStrategy) EvaluateOpenTrade(ctx context.Context, trade model.Trade, mtc model.MultiTimeframeContext) (*model.TradeAction, error) {
	last, ok := mtc.M1.Last()
	if !ok {
		last, ok = mtc.M5.Last()
	}
	if ok {
		if trade.Direction == types.DirectionBuy && last.Low.LessThanOrEqual(trade.StopLoss) {
			return &model.TradeAction{Kind: model.ActionCloseBySL, ClosePrice: trade.StopLoss, Reason: "SL crossed"}, nil
		}
		if trade.Direction == types.DirectionSell && last.High.GreaterThanOrEqual(trade.StopLoss) {
			return &model.TradeAction{Kind: model.ActionCloseBySL, ClosePrice: trade.StopLoss, Reason: "SL crossed"}, nil
		}
		if trade.Direction == types.DirectionBuy && last.High.GreaterThanOrEqual(trade.TakeProfit) {
			return &model.TradeAction{Kind: model.ActionCloseByTP, ClosePrice: trade.TakeProfit, Reason: "TP crossed"}, nil
		}
		if trade.Direction == types.DirectionSell && last.Low.LessThanOrEqual(trade.TakeProfit) {
			return &model.TradeAction{Kind: model.ActionCloseByTP, ClosePrice: trade.TakeProfit, Reason: "TP crossed"}, nil
		}
	}

	adj := s.estimator.EvaluateAdjustment(trade, mtc.CurrentPrice, mtc.H4, mtc.NowUTC)
	if adj == nil {
		return nil, nil
	}
	if adj.Close {
		return &model.TradeAction{Kind: model.ActionCloseManual, ClosePrice: mtc.CurrentPrice, Reason: adj.Reason}, nil
	}
	return &model.TradeAction{Kind: model.ActionUpdateSLTP, NewSL: adj.NewSL, Reason: adj.Reason}, nil
}

func (s *H4FVGStrategy) h4Advanced(mtc model.MultiTimeframeContext) bool {
	last, ok := mtc.H4.Last()
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, seen := s.lastH4Ts[mtc.Alias]
	s.lastH4Ts[mtc.Alias] = last.Timestamp
	if !seen {
		return true
	}
	return last.Timestamp.After(prev)
}

func (s *H4FVGStrategy) detectBias(mtc model.MultiTimeframeContext) (types.Direction, bool) {
	fvgs := indicators.DetectFVGs(mtc.H4.Candles, biasLookback)
	obs := indicators.DetectOrderBlocks(mtc.H4.Candles, biasLookback, decimal.NewFromFloat(0.02))

	var bullish, bearish int
	for _, f := range lastN(fvgs, 3) {
		countDirection(f.Direction, &bullish, &bearish)
	}
	for _, o := range lastN(obs, 3) {
		countDirection(o.Direction, &bullish, &bearish)
	}

	switch {
	case decimal.NewFromInt(int64(bullish)).GreaterThan(decimal.NewFromInt(int64(bearish) * 2)):
		return types.DirectionBuy, true
	case decimal.NewFromInt(int64(bearish)).GreaterThan(decimal.NewFromInt(int64(bullish) * 2)):
		return types.DirectionSell, true
	default:
		return "", false
	}
}

func (s *H4FVGStrategy) confirmStructure(mtc model.MultiTimeframeContext, bias types.Direction) bool {
	bosEvents := indicators.DetectBOS(mtc.H1.Candles, structureLookback)
	chochEvents := indicators.DetectCHOCH(mtc.H1.Candles, structureLookback)
	sweepEvents := indicators.DetectLiquiditySweep(mtc.M15.Candles, structureLookback)

	for _, e := range bosEvents {
		if e.Direction == bias {
			return true
		}
	}
	for _, e := range chochEvents {
		if e.Direction == bias {
			return true
		}
	}
	for _, e := range sweepEvents {
		if e.Direction == bias {
			return true
		}
	}
	return false
}

func (s *H4FVGStrategy) confirmEntry(mtc model.MultiTimeframeContext, bias types.Direction) bool {
	candles := mtc.M5.Candles
	n := len(candles)
	if n < 1 {
		return false
	}
	start := n - 3
	if start < 0 {
		start = 0
	}
	for _, c := range candles[start:] {
		body := c.Close.Sub(c.Open).Abs()
		if bias == types.DirectionBuy {
			lowerWick := decimal.Min(c.Open, c.Close).Sub(c.Low)
			if lowerWick.GreaterThan(body.Mul(decimal.NewFromInt(2))) && c.Close.GreaterThan(c.Open) {
				return true
			}
		} else {
			upperWick := c.High.Sub(decimal.Max(c.Open, c.Close))
			if upperWick.GreaterThan(body.Mul(decimal.NewFromInt(2))) && c.Close.LessThan(c.Open) {
				return true
			}
		}
	}

	if n < 5 {
		return false
	}
	closeLast := candles[n-1].Close
	closeMinus5 := candles[n-5].Close
	if bias == types.DirectionBuy {
		return closeLast.GreaterThan(closeMinus5)
	}
	return closeLast.LessThanOrEqual(closeMinus5)
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func countDirection(d types.Direction, bullish, bearish *int) {
	switch d {
	case types.DirectionBuy:
		*bullish++
	case types.DirectionSell:
		*bearish++
	}
}
