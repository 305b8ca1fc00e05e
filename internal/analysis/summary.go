package analysis

import (
	"math"
	"sort"
	"time"

	"field-dash/internal/model"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// PriceSummary is a per-symbol summary of closing prices over the requested
// window. It is what the stock dashboard shows under the chart and what the
// ranking is built from.
type PriceSummary struct {
	Symbol string `json:"symbol"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Count int `json:"count"`

	MinClose  float64 `json:"min_close"`
	MaxClose  float64 `json:"max_close"`
	MeanClose float64 `json:"mean_close"`
	P05Close  float64 `json:"p05_close"`
	P95Close  float64 `json:"p95_close"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`

	// Daily simple returns, close over previous close minus one.
	MeanReturn   float64 `json:"mean_return"`
	StdDevReturn float64 `json:"stddev_return"`

	// TotalReturn is last close over first close minus one.
	TotalReturn float64 `json:"total_return"`
	// MaxDrawdown is the largest peak-to-trough fall, as a positive fraction.
	MaxDrawdown float64 `json:"max_drawdown"`
}

func Summarize(h *model.PriceHistory) PriceSummary {
	p := PriceSummary{}
	if h == nil {
		return p
	}
	p.Symbol = h.Symbol
	dates, closes := h.Closes()
	if len(closes) == 0 {
		return p
	}
	p.Count = len(closes)
	p.Start = dates[0]
	p.End = dates[len(dates)-1]

	data := stats.Float64Data(closes)
	p.MinClose, _ = data.Min()
	p.MaxClose, _ = data.Max()
	p.MeanClose, _ = data.Mean()

	sorted := append([]float64(nil), closes...)
	sort.Float64s(sorted)
	p.P05Close = percentileSorted(sorted, 0.05)
	p.P95Close = percentileSorted(sorted, 0.95)
	p.SpreadP95P05 = p.P95Close - p.P05Close

	if rets := dailyReturns(closes); len(rets) > 0 {
		p.MeanReturn = stat.Mean(rets, nil)
		if len(rets) > 1 {
			_, p.StdDevReturn = stat.MeanStdDev(rets, nil)
		}
	}
	if closes[0] != 0 {
		p.TotalReturn = closes[len(closes)-1]/closes[0] - 1
	}
	p.MaxDrawdown = maxDrawdown(closes)
	return p
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

func maxDrawdown(closes []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := (peak - c) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
