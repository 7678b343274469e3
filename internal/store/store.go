// Package store implements §4.F: CRUD over Signal/Trade and append-only
// Heartbeat/ErrorLog records, plus the MAE/MFE aggregate query, all over a
// pgxpool.Pool with one statement per operation (no explicit transactions
// are needed — see SPEC_FULL.md §5.F).
package store

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mtfscanner/internal/model"
	"mtfscanner/internal/sltp"
	"mtfscanner/internal/types"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateSignal(ctx context.Context, sig model.Signal) (model.Signal, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO signals (symbol_alias, vendor_symbol, direction, generated_at_utc, entry_price, initial_sl, initial_tp, strategy_name, notes, estimated_rr)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`, sig.Alias, sig.VendorSymbol, string(sig.Direction), sig.GeneratedAtUTC, sig.EntryPrice, sig.InitialSL, sig.InitialTP, sig.StrategyName, sig.Notes, sig.EstimatedRR).Scan(&sig.ID)
	if err != nil {
		return model.Signal{}, err
	}
	return sig, nil
}

func (s *Store) CreateTrade(ctx context.Context, t model.Trade) (model.Trade, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO trades (signal_id, symbol_alias, vendor_symbol, direction, planned_entry, actual_entry, stop_loss, take_profit, state, open_time_utc)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`, t.SignalID, t.Alias, t.VendorSymbol, string(t.Direction), t.PlannedEntry, t.ActualEntry, t.StopLoss, t.TakeProfit, string(types.TradeStateOpen), t.OpenTimeUTC).Scan(&t.ID)
	if err != nil {
		return model.Trade{}, err
	}
	t.State = types.TradeStateOpen
	return t, nil
}

func (s *Store) GetOpenTrades(ctx context.Context, alias string) ([]model.Trade, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, signal_id, symbol_alias, vendor_symbol, direction, planned_entry, actual_entry, stop_loss, take_profit, state, open_time_utc, close_time_utc, close_price, close_reason
		FROM trades
		WHERE state = $1 AND ($2 = '' OR symbol_alias = $2)
	`, string(types.TradeStateOpen), alias)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// GetClosedTrades supports filters by alias/direction and orders by
// close-time descending; a zero or negative limit falls back to 100.
func (s *Store) GetClosedTrades(ctx context.Context, alias string, direction types.Direction, limit int) ([]model.Trade, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, signal_id, symbol_alias, vendor_symbol, direction, planned_entry, actual_entry, stop_loss, take_profit, state, open_time_utc, close_time_utc, close_price, close_reason
		FROM trades
		WHERE state != $1 AND ($2 = '' OR symbol_alias = $2) AND ($3 = '' OR direction = $3)
		ORDER BY close_time_utc DESC
		LIMIT $4
	`, string(types.TradeStateOpen), alias, string(direction), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

func (s *Store) CloseTrade(ctx context.Context, tradeID int64, state types.TradeState, closeTimeUTC time.Time, closePrice decimal.Decimal, reason string) (model.Trade, error) {
	var t model.Trade
	var direction, stateStr string
	err := s.pool.QueryRow(ctx, `
		UPDATE trades
		SET state = $2, close_time_utc = $3, close_price = $4, close_reason = $5
		WHERE id = $1
		RETURNING id, signal_id, symbol_alias, vendor_symbol, direction, planned_entry, actual_entry, stop_loss, take_profit, state, open_time_utc, close_time_utc, close_price, close_reason
	`, tradeID, string(state), closeTimeUTC, closePrice, reason).Scan(
		&t.ID, &t.SignalID, &t.Alias, &t.VendorSymbol, &direction, &t.PlannedEntry, &t.ActualEntry, &t.StopLoss, &t.TakeProfit, &stateStr, &t.OpenTimeUTC, &t.CloseTimeUTC, &t.ClosePrice, &t.CloseReason)
	if err != nil {
		return model.Trade{}, err
	}
	t.Direction = types.Direction(direction)
	t.State = types.TradeState(stateStr)
	return t, nil
}

func (s *Store) UpdateSLTP(ctx context.Context, tradeID int64, newSL, newTP *decimal.Decimal) (model.Trade, error) {
	var t model.Trade
	var direction, stateStr string
	err := s.pool.QueryRow(ctx, `
		UPDATE trades
		SET stop_loss = COALESCE($2, stop_loss), take_profit = COALESCE($3, take_profit)
		WHERE id = $1
		RETURNING id, signal_id, symbol_alias, vendor_symbol, direction, planned_entry, actual_entry, stop_loss, take_profit, state, open_time_utc, close_time_utc, close_price, close_reason
	`, tradeID, newSL, newTP).Scan(
		&t.ID, &t.SignalID, &t.Alias, &t.VendorSymbol, &direction, &t.PlannedEntry, &t.ActualEntry, &t.StopLoss, &t.TakeProfit, &stateStr, &t.OpenTimeUTC, &t.CloseTimeUTC, &t.ClosePrice, &t.CloseReason)
	if err != nil {
		return model.Trade{}, err
	}
	t.Direction = types.Direction(direction)
	t.State = types.TradeState(stateStr)
	return t, nil
}

// LoadClosedTradeIDs reloads the tradestate duplicate-suppression set at
// startup: every trade whose state is not Open.
func (s *Store) LoadClosedTradeIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM trades WHERE state != $1`, string(types.TradeStateOpen))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (s *Store) InsertHeartbeat(ctx context.Context, h model.Heartbeat) (model.Heartbeat, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO heartbeats (at_utc, symbols_scanned, notes)
		VALUES ($1,$2,$3)
		RETURNING id
	`, h.AtUTC, h.SymbolsScanned, h.Notes).Scan(&h.ID)
	if err != nil {
		return model.Heartbeat{}, err
	}
	return h, nil
}

func (s *Store) InsertErrorLog(ctx context.Context, e model.ErrorLog) (model.ErrorLog, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO error_logs (at_utc, severity, component, message)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, e.AtUTC, e.Severity, e.Component, e.Message).Scan(&e.ID)
	if err != nil {
		return model.ErrorLog{}, err
	}
	return e, nil
}

func (s *Store) RecentErrors(ctx context.Context, since time.Time) ([]model.ErrorLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, at_utc, severity, component, message
		FROM error_logs
		WHERE at_utc >= $1
		ORDER BY at_utc DESC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ErrorLog
	for rows.Next() {
		var e model.ErrorLog
		if err := rows.Scan(&e.ID, &e.AtUTC, &e.Severity, &e.Component, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetMAEMFEStats implements §4.F's aggregate: per-trade pnl over the most
// recent 100 closed trades for (alias, direction), partitioned into mae
// (negative pnl, absolute value) and mfe (positive pnl).
func (s *Store) GetMAEMFEStats(ctx context.Context, alias string, direction types.Direction) (sltp.MAEMFEStats, error) {
	trades, err := s.GetClosedTrades(ctx, alias, direction, 100)
	if err != nil {
		return sltp.MAEMFEStats{}, err
	}

	var maes, mfes []decimal.Decimal
	for _, t := range trades {
		if t.ClosePrice == nil {
			continue
		}
		var pnl decimal.Decimal
		if direction == types.DirectionBuy {
			pnl = t.ClosePrice.Sub(t.ActualEntry)
		} else {
			pnl = t.ActualEntry.Sub(*t.ClosePrice)
		}
		if pnl.IsNegative() {
			maes = append(maes, pnl.Abs())
		} else if pnl.IsPositive() {
			mfes = append(mfes, pnl)
		}
	}

	return sltp.MAEMFEStats{
		MedianMAE:   median(maes),
		MeanMAE:     mean(maes),
		MedianMFE:   median(mfes),
		MeanMFE:     mean(mfes),
		SampleCount: len(trades),
	}, nil
}

func scanTrades(rows pgx.Rows) ([]model.Trade, error) {
	var out []model.Trade
	for rows.Next() {
		var t model.Trade
		var direction, stateStr string
		if err := rows.Scan(&t.ID, &t.SignalID, &t.Alias, &t.VendorSymbol, &direction, &t.PlannedEntry, &t.ActualEntry, &t.StopLoss, &t.TakeProfit, &stateStr, &t.OpenTimeUTC, &t.CloseTimeUTC, &t.ClosePrice, &t.CloseReason); err != nil {
			return nil, err
		}
		t.Direction = types.Direction(direction)
		t.State = types.TradeState(stateStr)
		out = append(out, t)
	}
	return out, rows.Err()
}

func median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}
