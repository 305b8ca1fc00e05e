package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"field-dash/internal/model"
	"field-dash/internal/observability"

	"github.com/tidwall/gjson"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches daily history from the Yahoo Finance chart API.
type YahooClient struct {
	BaseURL string
	Client  *http.Client

	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewYahooClient creates a chart API client.
// If baseURL is empty, defaults to "https://query1.finance.yahoo.com".
func NewYahooClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *YahooClient {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YahooClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

func (c *YahooClient) Name() string { return "yahoo" }

// chartResponse is the subset of /v8/finance/chart we read. Quote arrays
// hold nulls for sessions without trades.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency  string `json:"currency"`
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// History fetches daily bars for q.Symbol. The returned bars are restricted
// to [q.Start, q.End).
func (c *YahooClient) History(ctx context.Context, q HistoryQuery) (*model.PriceHistory, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	symbol := strings.ToUpper(strings.TrimSpace(q.Symbol))

	u, err := url.Parse(c.BaseURL + "/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	v := u.Query()
	v.Set("period1", strconv.FormatInt(q.Start.Unix(), 10))
	v.Set("period2", strconv.FormatInt(q.End.Unix(), 10))
	v.Set("interval", "1d")
	v.Set("events", "history")
	v.Set("includeAdjustedClose", "true")
	u.RawQuery = v.Encode()

	c.logger.Debug("yahoo request",
		"path", u.Path, "symbol", symbol,
		"start", q.Start.Format("2006-01-02"), "end", q.End.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; field-dash/1.0)")

	started := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(started)
	if c.metrics != nil {
		c.metrics.ProviderDuration.WithLabelValues(c.Name()).Observe(duration.Seconds())
	}
	if err != nil {
		c.observe("error")
		c.logger.Warn("yahoo request failed", "symbol", symbol, "error", err, "duration", duration)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe("error")
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("yahoo response", "symbol", symbol, "status", resp.StatusCode, "duration", duration)

	if resp.StatusCode != http.StatusOK {
		c.observe("error")
		perr := statusError(resp, body)
		c.logger.Warn("yahoo error", "symbol", symbol, "status", resp.StatusCode, "code", perr.Code, "message", perr.Message)
		return nil, perr
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.observe("error")
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Chart.Result) == 0 {
		c.observe("error")
		return nil, &ProviderError{
			StatusCode: http.StatusNotFound,
			Code:       "SYMBOL_NOT_FOUND",
			Message:    fmt.Sprintf("no data returned for %s", symbol),
		}
	}

	hist := barsFromChart(symbol, parsed)
	c.observe("success")
	c.logger.Info("yahoo history fetched", "symbol", symbol, "bars", len(hist.Bars))
	return hist.Window(dayOf(q.Start), dayOf(q.End)), nil
}

func (c *YahooClient) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.ProviderRequests.WithLabelValues(c.Name(), outcome).Inc()
	}
}

func barsFromChart(symbol string, parsed chartResponse) *model.PriceHistory {
	res := parsed.Chart.Result[0]
	hist := &model.PriceHistory{Symbol: symbol, Currency: res.Meta.Currency, Bars: []model.PriceBar{}}
	if len(res.Indicators.Quote) == 0 {
		return hist
	}
	quote := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}
	for i, ts := range res.Timestamp {
		closeV := at(quote.Close, i)
		if closeV == nil {
			continue
		}
		// Shift by the exchange offset so the session date is the local one.
		date := dayOf(time.Unix(ts+res.Meta.GMTOffset, 0).UTC())
		bar := model.PriceBar{
			Date:  date,
			Open:  deref(at(quote.Open, i)),
			High:  deref(at(quote.High, i)),
			Low:   deref(at(quote.Low, i)),
			Close: *closeV,
		}
		bar.AdjClose = bar.Close
		if a := at(adj, i); a != nil {
			bar.AdjClose = *a
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		hist.Bars = append(hist.Bars, bar)
	}
	return hist
}

// statusError maps a non-200 chart API response to a ProviderError.
func statusError(resp *http.Response, body []byte) *ProviderError {
	desc := gjson.GetBytes(body, "chart.error.description").String()
	switch resp.StatusCode {
	case http.StatusNotFound:
		if desc == "" {
			desc = "symbol not found"
		}
		return &ProviderError{StatusCode: resp.StatusCode, Code: "SYMBOL_NOT_FOUND", Message: desc}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{StatusCode: resp.StatusCode, Code: "UNAUTHORIZED", Message: "provider rejected the request"}
	default:
		msg := fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status)
		if desc != "" {
			msg += ": " + desc
		}
		return &ProviderError{StatusCode: resp.StatusCode, Code: "API_ERROR", Message: msg}
	}
}

func at[T any](xs []*T, i int) *T {
	if i < len(xs) {
		return xs[i]
	}
	return nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
