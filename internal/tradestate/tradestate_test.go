package tradestate

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtfscanner/internal/model"
	"mtfscanner/internal/types"
)

type fakeStore struct {
	closeCalls  int
	updateCalls int
	closedIDs   map[int64]struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{closedIDs: make(map[int64]struct{})}
}

func (f *fakeStore) LoadClosedTradeIDs(ctx context.Context) (map[int64]struct{}, error) {
	return f.closedIDs, nil
}

func (f *fakeStore) CloseTrade(ctx context.Context, tradeID int64, state types.TradeState, closeTimeUTC time.Time, closePrice decimal.Decimal, reason string) (model.Trade, error) {
	f.closeCalls++
	return model.Trade{ID: tradeID, State: state, ClosePrice: &closePrice, CloseReason: &reason}, nil
}

func (f *fakeStore) UpdateSLTP(ctx context.Context, tradeID int64, newSL, newTP *decimal.Decimal) (model.Trade, error) {
	f.updateCalls++
	return model.Trade{ID: tradeID, State: types.TradeStateOpen, StopLoss: *newSL}, nil
}

func openBuyTrade() model.Trade {
	return model.Trade{
		ID:           1,
		Direction:    types.DirectionBuy,
		State:        types.TradeStateOpen,
		PlannedEntry: decimal.NewFromFloat(100),
		StopLoss:     decimal.NewFromFloat(95),
		TakeProfit:   decimal.NewFromFloat(110),
	}
}

func TestCheckAndUpdate_IgnoresClosedTrade(t *testing.T) {
	trade := openBuyTrade()
	trade.State = types.TradeStateClosedByTp
	action := CheckAndUpdate(trade, decimal.NewFromFloat(90), decimal.NewFromFloat(91), decimal.NewFromFloat(89))
	assert.Nil(t, action)
}

func TestCheckAndUpdate_BuySLBeforeTP(t *testing.T) {
	trade := openBuyTrade()
	// both SL and TP technically crossed within the same candle: SL wins.
	action := CheckAndUpdate(trade, decimal.NewFromFloat(100), decimal.NewFromFloat(111), decimal.NewFromFloat(94))
	require.NotNil(t, action)
	assert.Equal(t, model.ActionCloseBySL, action.Kind)
}

func TestCheckAndUpdate_BuyTPOnly(t *testing.T) {
	trade := openBuyTrade()
	action := CheckAndUpdate(trade, decimal.NewFromFloat(110), decimal.NewFromFloat(111), decimal.NewFromFloat(105))
	require.NotNil(t, action)
	assert.Equal(t, model.ActionCloseByTP, action.Kind)
}

func TestCheckAndUpdate_SellDirectionMirrored(t *testing.T) {
	trade := openBuyTrade()
	trade.Direction = types.DirectionSell
	trade.StopLoss = decimal.NewFromFloat(105)
	trade.TakeProfit = decimal.NewFromFloat(90)

	action := CheckAndUpdate(trade, decimal.NewFromFloat(106), decimal.NewFromFloat(106), decimal.NewFromFloat(104))
	require.NotNil(t, action)
	assert.Equal(t, model.ActionCloseBySL, action.Kind)
}

func TestCheckAndUpdate_NoCrossing(t *testing.T) {
	trade := openBuyTrade()
	action := CheckAndUpdate(trade, decimal.NewFromFloat(100), decimal.NewFromFloat(102), decimal.NewFromFloat(98))
	assert.Nil(t, action)
}

func TestMachine_ApplyCloseTracksClosedSet(t *testing.T) {
	store := newFakeStore()
	m := New(store)
	trade := openBuyTrade()

	assert.False(t, m.IsClosed(trade.ID))

	updated, err := m.Apply(context.Background(), trade, model.TradeAction{Kind: model.ActionCloseByTP, ClosePrice: decimal.NewFromFloat(110), Reason: "TP crossed"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, types.TradeStateClosedByTp, updated.State)
	assert.Equal(t, 1, store.closeCalls)
	assert.True(t, m.IsClosed(trade.ID))
}

func TestMachine_ApplyUpdateDoesNotTrackClosedSet(t *testing.T) {
	store := newFakeStore()
	m := New(store)
	trade := openBuyTrade()
	newSL := decimal.NewFromFloat(100)

	_, err := m.Apply(context.Background(), trade, model.TradeAction{Kind: model.ActionUpdateSLTP, NewSL: &newSL}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, store.updateCalls)
	assert.False(t, m.IsClosed(trade.ID))
}

func TestMachine_Load(t *testing.T) {
	store := newFakeStore()
	store.closedIDs[42] = struct{}{}
	m := New(store)

	require.NoError(t, m.Load(context.Background()))
	assert.True(t, m.IsClosed(42))
}

func TestShouldSendTPNotification(t *testing.T) {
	m := New(newFakeStore())
	assert.True(t, m.ShouldSendTPNotification(1, types.TradeStateClosedByTp, false))
	assert.False(t, m.ShouldSendTPNotification(1, types.TradeStateClosedByTp, true))
	assert.False(t, m.ShouldSendTPNotification(1, types.TradeStateClosedBySl, false))
}
