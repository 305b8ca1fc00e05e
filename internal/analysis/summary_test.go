package analysis

import (
	"testing"
	"time"

	"field-dash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(symbol string, closes ...float64) *model.PriceHistory {
	h := &model.PriceHistory{Symbol: symbol}
	start := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		h.Bars = append(h.Bars, model.PriceBar{Date: start.AddDate(0, 0, i), Close: c})
	}
	return h
}

func TestSummarize(t *testing.T) {
	s := Summarize(history("AAPL", 100, 110, 99, 121))

	assert.Equal(t, "AAPL", s.Symbol)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 99.0, s.MinClose)
	assert.Equal(t, 121.0, s.MaxClose)
	assert.InDelta(t, 107.5, s.MeanClose, 1e-9)
	assert.InDelta(t, 0.21, s.TotalReturn, 1e-9)
	assert.InDelta(t, 0.1, s.MaxDrawdown, 1e-9)
	assert.True(t, s.Start.Before(s.End))

	// returns: 0.10, -0.10, 0.2222...
	assert.InDelta(t, (0.1-0.1+22.0/99.0)/3, s.MeanReturn, 1e-9)
	assert.Greater(t, s.StdDevReturn, 0.0)

	assert.LessOrEqual(t, s.MinClose, s.P05Close)
	assert.LessOrEqual(t, s.P05Close, s.P95Close)
	assert.LessOrEqual(t, s.P95Close, s.MaxClose)
	assert.InDelta(t, s.P95Close-s.P05Close, s.SpreadP95P05, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(history("MSFT"))
	assert.Equal(t, "MSFT", s.Symbol)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.TotalReturn)

	assert.Zero(t, Summarize(nil).Count)
}

func TestSummarize_SingleBar(t *testing.T) {
	s := Summarize(history("TSLA", 20))
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 20.0, s.P05Close)
	assert.Zero(t, s.StdDevReturn)
	assert.Zero(t, s.MeanReturn)
}

func TestPercentileSorted(t *testing.T) {
	vals := []float64{0, 10, 20, 30, 40}
	assert.Equal(t, 0.0, percentileSorted(vals, 0))
	assert.Equal(t, 40.0, percentileSorted(vals, 1))
	assert.Equal(t, 20.0, percentileSorted(vals, 0.5))
	assert.InDelta(t, 2.0, percentileSorted(vals, 0.05), 1e-9)
	assert.Equal(t, 0.0, percentileSorted(nil, 0.5))
}

func TestRankByReturn(t *testing.T) {
	ranked := RankByReturn([]*model.PriceHistory{
		history("AAA", 10, 11),
		history("BBB", 10, 15),
		history("CCC", 10, 9),
	})
	require.Len(t, ranked, 3)
	assert.Equal(t, "BBB", ranked[0].Symbol)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "AAA", ranked[1].Symbol)
	assert.Equal(t, "CCC", ranked[2].Symbol)
	assert.Equal(t, 3, ranked[2].Rank)
}
