package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"field-dash/internal/model"
)

// HistoryQuery selects daily bars for one symbol in [Start, End).
type HistoryQuery struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// Validate checks the query shape shared by all providers.
func (q HistoryQuery) Validate() error {
	if strings.TrimSpace(q.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if q.Start.After(q.End) {
		return fmt.Errorf("start must not be after end")
	}
	return nil
}

// HistoryProvider fetches daily price history.
type HistoryProvider interface {
	Name() string
	History(ctx context.Context, q HistoryQuery) (*model.PriceHistory, error)
}

// ProviderError represents an error reported by a price history provider.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *ProviderError) Error() string {
	return e.Message
}

// AsProviderError unwraps err into a *ProviderError if it carries one.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// dayOf truncates t to its calendar date in UTC.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
