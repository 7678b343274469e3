package types

type Direction string

type TradeState string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

const (
	TradeStateOpen         TradeState = "Open"
	TradeStateClosedByTp   TradeState = "ClosedByTp"
	TradeStateClosedBySl   TradeState = "ClosedBySl"
	TradeStateClosedManual TradeState = "ClosedManual"
	TradeStateExpired      TradeState = "Expired"
)
