package model

import "time"

// PriceBar is one daily bar of a symbol's price history.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// PriceHistory matches the JSON shape of saved history snapshots.
//
// Example:
//
//	{
//	  "symbol": "AAPL",
//	  "currency": "USD",
//	  "bars": [ ... ]
//	}
type PriceHistory struct {
	Symbol   string     `json:"symbol"`
	Currency string     `json:"currency,omitempty"`
	Bars     []PriceBar `json:"bars"`
}

// Closes returns the bar dates and closing prices as parallel slices.
func (h *PriceHistory) Closes() ([]time.Time, []float64) {
	if h == nil {
		return nil, nil
	}
	xs := make([]time.Time, 0, len(h.Bars))
	ys := make([]float64, 0, len(h.Bars))
	for _, b := range h.Bars {
		xs = append(xs, b.Date)
		ys = append(ys, b.Close)
	}
	return xs, ys
}

// Window keeps bars whose date falls in [start, end).
func (h *PriceHistory) Window(start, end time.Time) *PriceHistory {
	out := &PriceHistory{Symbol: h.Symbol, Currency: h.Currency, Bars: []PriceBar{}}
	for _, b := range h.Bars {
		if b.Date.Before(start) || !b.Date.Before(end) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}

// Company is one listing from the exchange company list.
type Company struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Option is a dropdown entry: Label is shown, Value is submitted.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Option renders the company as "Name SYMBOL".
func (c Company) Option() Option {
	return Option{Label: c.Name + " " + c.Symbol, Value: c.Symbol}
}
