package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"field-dash/internal/analysis"
	"field-dash/internal/data"
	"field-dash/internal/model"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

// ErrInvalidRequest marks user input errors. Handlers map it to 400.
var ErrInvalidRequest = errors.New("invalid request")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// StockDefaults are the initial form values of the stock page.
type StockDefaults struct {
	Tickers     []string
	MinDate     time.Time
	Start       time.Time
	Concurrency int
}

// GraphRequest is the submitted stock form. Start and End may carry a time
// suffix; only the leading YYYY-MM-DD is read.
type GraphRequest struct {
	Tickers []string `json:"tickers"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
}

// GraphResult is the figure plus per-ticker summaries, both in ticker order,
// and the ranking by total return.
type GraphResult struct {
	Figure    Figure                   `json:"figure"`
	Summaries []analysis.PriceSummary  `json:"summaries"`
	Ranking   []analysis.RankedSummary `json:"ranking"`

	Histories []*model.PriceHistory `json:"-"`
}

// FormDefaults is what the stock page is initialised with.
type FormDefaults struct {
	Tickers []string `json:"tickers"`
	MinDate string   `json:"min_date"`
	MaxDate string   `json:"max_date"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Figure  Figure   `json:"figure"`
}

// StockDashboard fetches price histories for the stock page.
type StockDashboard struct {
	provider  data.HistoryProvider
	companies *data.CompanyList
	clock     clockwork.Clock
	defaults  StockDefaults
	logger    *slog.Logger
}

func NewStockDashboard(provider data.HistoryProvider, companies *data.CompanyList, clock clockwork.Clock, defaults StockDefaults, logger *slog.Logger) *StockDashboard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.Concurrency < 1 {
		defaults.Concurrency = 1
	}
	return &StockDashboard{
		provider:  provider,
		companies: companies,
		clock:     clock,
		defaults:  defaults,
		logger:    logger,
	}
}

func (s *StockDashboard) Companies() *data.CompanyList { return s.companies }

func (s *StockDashboard) ProviderName() string { return s.provider.Name() }

// Today is the latest selectable date.
func (s *StockDashboard) Today() time.Time {
	y, m, d := s.clock.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *StockDashboard) Defaults() FormDefaults {
	today := s.Today().Format(dateLayout)
	return FormDefaults{
		Tickers: append([]string(nil), s.defaults.Tickers...),
		MinDate: s.defaults.MinDate.Format(dateLayout),
		MaxDate: today,
		Start:   s.defaults.Start.Format(dateLayout),
		End:     today,
		Figure:  DefaultFigure(),
	}
}

// ParseRequest validates a GraphRequest and returns the cleaned tickers and
// the [start, end) window.
func (s *StockDashboard) ParseRequest(req GraphRequest) ([]string, time.Time, time.Time, error) {
	var tickers []string
	for _, t := range req.Tickers {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		return nil, time.Time{}, time.Time{}, invalidf("at least one ticker is required")
	}
	start, err := parseDatePrefix(req.Start)
	if err != nil {
		return nil, time.Time{}, time.Time{}, invalidf("start: %v", err)
	}
	end, err := parseDatePrefix(req.End)
	if err != nil {
		return nil, time.Time{}, time.Time{}, invalidf("end: %v", err)
	}
	if start.After(end) {
		return nil, time.Time{}, time.Time{}, invalidf("start %s is after end %s", start.Format(dateLayout), end.Format(dateLayout))
	}
	if !s.defaults.MinDate.IsZero() && start.Before(s.defaults.MinDate) {
		return nil, time.Time{}, time.Time{}, invalidf("start must not be before %s", s.defaults.MinDate.Format(dateLayout))
	}
	return tickers, start, end, nil
}

// Graph fetches every ticker concurrently and builds one trace per ticker of
// closing prices. The first failure cancels the remaining fetches.
func (s *StockDashboard) Graph(ctx context.Context, req GraphRequest) (*GraphResult, error) {
	tickers, start, end, err := s.ParseRequest(req)
	if err != nil {
		return nil, err
	}

	histories, err := s.Fetch(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}

	res := &GraphResult{
		Figure:    Figure{Data: make([]Trace, 0, len(tickers)), Layout: Layout{Title: strings.Join(tickers, ", ")}},
		Summaries: make([]analysis.PriceSummary, 0, len(tickers)),
		Histories: histories,
	}
	for i, h := range histories {
		res.Figure.Data = append(res.Figure.Data, closeTrace(tickers[i], h))
		res.Summaries = append(res.Summaries, analysis.Summarize(h))
	}
	res.Ranking = analysis.RankByReturn(histories)
	return res, nil
}

// Fetch returns histories for tickers in the same order.
func (s *StockDashboard) Fetch(ctx context.Context, tickers []string, start, end time.Time) ([]*model.PriceHistory, error) {
	out := make([]*model.PriceHistory, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.defaults.Concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			h, err := s.provider.History(gctx, data.HistoryQuery{Symbol: ticker, Start: start, End: end})
			if err != nil {
				return fmt.Errorf("%s: %w", ticker, err)
			}
			if h.Symbol == "" {
				named := *h
				named.Symbol = ticker
				h = &named
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("history fetch failed", "provider", s.provider.Name(), "error", err)
		return nil, err
	}
	s.logger.Debug("histories fetched",
		"provider", s.provider.Name(),
		"tickers", len(tickers),
		"start", start.Format(dateLayout),
		"end", end.Format(dateLayout),
	)
	return out, nil
}

func closeTrace(name string, h *model.PriceHistory) Trace {
	dates, closes := h.Closes()
	x := make([]any, len(dates))
	for i, d := range dates {
		x[i] = d.Format(dateLayout)
	}
	if closes == nil {
		closes = []float64{}
	}
	return Trace{Name: name, X: x, Y: closes}
}

func parseDatePrefix(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	t, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
