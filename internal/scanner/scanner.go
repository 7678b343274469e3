// Package scanner implements §4.G: the per-cycle pipeline tying the cache,
// strategy engine, trade state machine, persistence, and notifier
// together for every configured symbol.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mtfscanner/internal/applog"
	"mtfscanner/internal/cache"
	"mtfscanner/internal/errs"
	"mtfscanner/internal/model"
	"mtfscanner/internal/notify"
	"mtfscanner/internal/store"
	"mtfscanner/internal/strategy"
	"mtfscanner/internal/tradestate"
)

var timeframeLookbacks = map[string]time.Duration{
	"240m": 30 * 24 * time.Hour,
	"60m":  14 * 24 * time.Hour,
	"30m":  7 * 24 * time.Hour,
	"15m":  7 * 24 * time.Hour,
	"5m":   3 * 24 * time.Hour,
	"1m":   24 * time.Hour,
}

// Orchestrator runs one scan cycle per configured symbol on a fixed
// ticker, fanning out through a bounded worker pool per §9's design note.
type Orchestrator struct {
	Cache        *cache.Cache
	Strategy     strategy.Engine
	Store        *store.Store
	TradeState   *tradestate.Machine
	Notifier     notify.Notifier
	Symbols      map[string]string // alias -> vendor symbol
	ScanInterval time.Duration
	Parallelism  int
}

// Run blocks until ctx is cancelled, firing one scan cycle per tick.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.ScanInterval)
	defer ticker.Stop()

	o.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.runCycle(ctx)
		}
	}
}

func (o *Orchestrator) runCycle(ctx context.Context) {
	cycleID := uuid.New().String()
	applog.Info("scanner: cycle %s starting for %d symbols", cycleID, len(o.Symbols))

	size := o.Parallelism
	if size > len(o.Symbols) {
		size = len(o.Symbols)
	}
	p := newPool(size)

	for alias, vendorSymbol := range o.Symbols {
		alias, vendorSymbol := alias, vendorSymbol
		p.submit(func() {
			o.scanSymbol(ctx, cycleID, alias, vendorSymbol)
		})
	}
	p.wait()

	applog.Info("scanner: cycle %s complete", cycleID)
}

// scanSymbol is a single symbol's pass. Errors from one symbol never
// affect another, matching scan_symbol in the Python original step for
// step.
func (o *Orchestrator) scanSymbol(ctx context.Context, cycleID, alias, vendorSymbol string) {
	defer func() {
		if r := recover(); r != nil {
			wrapped := errs.Runtime("scanner", fmt.Errorf("cycle %s panic scanning %s: %v", cycleID, alias, r))
			o.reportError(ctx, "ERROR", "scanner", wrapped.Error())
		}
	}()

	mtc, err := o.buildContext(ctx, alias, vendorSymbol)
	if err != nil {
		o.reportDataError(ctx, alias, err)
		return
	}

	if err := o.evaluateNewSignal(ctx, mtc); err != nil {
		wrapped := errs.Runtime("strategy", err)
		o.reportError(ctx, "ERROR", "strategy", wrapped.Error())
	}

	if err := o.evaluateOpenTrades(ctx, alias, mtc); err != nil {
		wrapped := errs.Runtime("tradestate", err)
		o.reportError(ctx, "ERROR", "tradestate", wrapped.Error())
	}
}

func (o *Orchestrator) buildContext(ctx context.Context, alias, vendorSymbol string) (model.MultiTimeframeContext, error) {
	mtc := model.MultiTimeframeContext{Alias: alias, VendorSymbol: vendorSymbol, NowUTC: time.Now().UTC()}

	series := map[string]*model.CandleSeries{
		"240m": &mtc.H4,
		"60m":  &mtc.H1,
		"30m":  &mtc.M30,
		"15m":  &mtc.M15,
		"5m":   &mtc.M5,
		"1m":   &mtc.M1,
	}
	for interval, dest := range series {
		s, err := o.Cache.GetCandles(ctx, vendorSymbol, interval, timeframeLookbacks[interval])
		if err != nil {
			return mtc, err
		}
		*dest = s
	}

	if last, ok := mtc.H1.Last(); ok {
		mtc.CurrentPrice = last.Close
	}
	return mtc, nil
}

func (o *Orchestrator) evaluateNewSignal(ctx context.Context, mtc model.MultiTimeframeContext) error {
	signal, err := o.Strategy.EvaluateNewSignal(ctx, mtc)
	if err != nil {
		return err
	}
	if signal == nil {
		return nil
	}

	saved, err := o.Store.CreateSignal(ctx, *signal)
	if err != nil {
		return err
	}

	trade := model.Trade{
		SignalID:     saved.ID,
		Alias:        saved.Alias,
		VendorSymbol: saved.VendorSymbol,
		Direction:    saved.Direction,
		PlannedEntry: saved.EntryPrice,
		ActualEntry:  saved.EntryPrice,
		StopLoss:     saved.InitialSL,
		TakeProfit:   saved.InitialTP,
		OpenTimeUTC:  saved.GeneratedAtUTC,
	}
	if _, err := o.Store.CreateTrade(ctx, trade); err != nil {
		return err
	}

	if err := o.Notifier.SignalAlert(ctx, saved); err != nil {
		applog.Warn("scanner: signal alert failed for %s: %v", saved.Alias, err)
	}
	return nil
}

func (o *Orchestrator) evaluateOpenTrades(ctx context.Context, alias string, mtc model.MultiTimeframeContext) error {
	trades, err := o.Store.GetOpenTrades(ctx, alias)
	if err != nil {
		return err
	}

	for _, trade := range trades {
		action, err := o.Strategy.EvaluateOpenTrade(ctx, trade, mtc)
		if err != nil {
			applog.Warn("scanner: evaluate open trade %d failed: %v", trade.ID, err)
			continue
		}
		if action == nil {
			continue
		}

		updated, err := o.TradeState.Apply(ctx, trade, *action, mtc.NowUTC)
		if err != nil {
			return err
		}

		if err := o.notifyAction(ctx, updated, *action); err != nil {
			applog.Warn("scanner: notify failed for trade %d: %v", trade.ID, err)
		}
	}
	return nil
}

func (o *Orchestrator) notifyAction(ctx context.Context, trade model.Trade, action model.TradeAction) error {
	switch action.Kind {
	case model.ActionCloseByTP:
		return o.Notifier.CloseAlert(ctx, trade, "tp")
	case model.ActionCloseBySL:
		return o.Notifier.CloseAlert(ctx, trade, "sl")
	case model.ActionCloseManual:
		return o.Notifier.CloseAlert(ctx, trade, "manual")
	case model.ActionUpdateSLTP:
		return o.Notifier.UpdateAlert(ctx, trade, action.Reason)
	default:
		return nil
	}
}

func (o *Orchestrator) reportDataError(ctx context.Context, alias string, err error) {
	wrapped := errs.Data("scanner", err)
	applog.Warn("scanner: %s: %v", alias, wrapped)
	_, logErr := o.Store.InsertErrorLog(ctx, model.ErrorLog{
		AtUTC:     time.Now().UTC(),
		Severity:  "WARNING",
		Component: "scanner",
		Message:   fmt.Sprintf("%s: %v", alias, wrapped),
	})
	if logErr != nil {
		applog.Error("scanner: failed to persist error log: %v", logErr)
	}
}

func (o *Orchestrator) reportError(ctx context.Context, severity, component, message string) {
	applog.Error("scanner: %s %s: %s", severity, component, message)
	_, logErr := o.Store.InsertErrorLog(ctx, model.ErrorLog{
		AtUTC:     time.Now().UTC(),
		Severity:  severity,
		Component: component,
		Message:   message,
	})
	if logErr != nil {
		applog.Error("scanner: failed to persist error log: %v", logErr)
	}
	if err := o.Notifier.ErrorAlert(ctx, severity, component, message); err != nil {
		applog.Warn("scanner: error alert dispatch failed: %v", err)
	}
}
