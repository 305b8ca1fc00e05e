package data

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"field-dash/internal/model"
	"field-dash/internal/observability"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// FinanceGoProvider fetches daily history through the finance-go chart
// iterator.
type FinanceGoProvider struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewFinanceGoProvider(logger *slog.Logger, metrics *observability.Metrics) *FinanceGoProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FinanceGoProvider{logger: logger, metrics: metrics}
}

func (p *FinanceGoProvider) Name() string { return "financego" }

func (p *FinanceGoProvider) History(ctx context.Context, q HistoryQuery) (*model.PriceHistory, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	symbol := strings.ToUpper(strings.TrimSpace(q.Symbol))
	params := &chart.Params{
		Symbol:   symbol,
		Interval: datetime.OneDay,
		Start:    &datetime.Datetime{Year: q.Start.Year(), Month: int(q.Start.Month()), Day: q.Start.Day()},
		End:      &datetime.Datetime{Year: q.End.Year(), Month: int(q.End.Month()), Day: q.End.Day()},
	}

	started := time.Now()
	iter := chart.Get(params)
	hist := &model.PriceHistory{Symbol: symbol, Bars: []model.PriceBar{}}
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := iter.Bar()
		closeV, _ := b.Close.Float64()
		openV, _ := b.Open.Float64()
		highV, _ := b.High.Float64()
		lowV, _ := b.Low.Float64()
		adjV, _ := b.AdjClose.Float64()
		hist.Bars = append(hist.Bars, model.PriceBar{
			Date:     dayOf(time.Unix(int64(b.Timestamp), 0).UTC()),
			Open:     openV,
			High:     highV,
			Low:      lowV,
			Close:    closeV,
			AdjClose: adjV,
			Volume:   int64(b.Volume),
		})
	}
	if p.metrics != nil {
		p.metrics.ProviderDuration.WithLabelValues(p.Name()).Observe(time.Since(started).Seconds())
	}
	if err := iter.Err(); err != nil {
		p.observe("error")
		p.logger.Warn("finance-go history failed", "symbol", symbol, "error", err)
		return nil, &ProviderError{Code: "API_ERROR", Message: fmt.Sprintf("history for %s: %v", symbol, err)}
	}
	p.observe("success")
	p.logger.Info("finance-go history fetched", "symbol", symbol, "bars", len(hist.Bars))
	return hist.Window(dayOf(q.Start), dayOf(q.End)), nil
}

func (p *FinanceGoProvider) observe(outcome string) {
	if p.metrics != nil {
		p.metrics.ProviderRequests.WithLabelValues(p.Name(), outcome).Inc()
	}
}
