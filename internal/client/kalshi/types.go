package kalshi

import (
	"github.com/shopspring/decimal"
)

// Market is a normalized market snapshot. Prices are exact decimal
// probabilities in [0,1], converted from the exchange's cent integers.
type Market struct {
	Ticker       string
	EventTicker  string
	SeriesTicker string
	Title        string
	Status       string
	YesBid       decimal.Decimal
	YesAsk       decimal.Decimal
	LastPrice    decimal.Decimal
	Volume       int64
	OpenInterest int64
}

// marketsResponse mirrors the upstream JSON shape. Prices arrive as
// integer cents.
type marketsResponse struct {
	Markets []marketRecord `json:"markets"`
	Cursor  string         `json:"cursor"`
}

type marketRecord struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	YesBid       int64  `json:"yes_bid"`
	YesAsk       int64  `json:"yes_ask"`
	LastPrice    int64  `json:"last_price"`
	Volume       int64  `json:"volume"`
	OpenInterest int64  `json:"open_interest"`
}
