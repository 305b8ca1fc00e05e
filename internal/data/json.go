package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"field-dash/internal/model"
)

func LoadHistoryJSON(path string) (*model.PriceHistory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var h model.PriceHistory
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &h, nil
}

// SaveHistoryJSON writes a history snapshot, creating the directory if needed.
func SaveHistoryJSON(h *model.PriceHistory, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(filePath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// SnapshotPath is where the snapshot for symbol lives inside dir.
func SnapshotPath(dir, symbol string) string {
	return filepath.Join(dir, strings.ToUpper(symbol)+".json")
}

// SnapshotProvider serves history from JSON snapshots saved by
// cmd/fetch-history, keyed by symbol. It never touches the network.
type SnapshotProvider struct {
	bySymbol map[string]*model.PriceHistory
}

// NewSnapshotProvider loads every *.json file under the given paths. Each
// path may be a file or a directory.
func NewSnapshotProvider(paths ...string) (*SnapshotProvider, error) {
	p := &SnapshotProvider{bySymbol: map[string]*model.PriceHistory{}}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := p.add(path); err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			if err := p.add(filepath.Join(path, e.Name())); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

func (p *SnapshotProvider) add(path string) error {
	h, err := LoadHistoryJSON(path)
	if err != nil {
		return err
	}
	if h.Symbol == "" {
		h.Symbol = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	key := strings.ToUpper(h.Symbol)
	if prev, ok := p.bySymbol[key]; ok {
		prev.Bars = append(prev.Bars, h.Bars...)
		sort.Slice(prev.Bars, func(i, j int) bool { return prev.Bars[i].Date.Before(prev.Bars[j].Date) })
		return nil
	}
	p.bySymbol[key] = h
	return nil
}

func (p *SnapshotProvider) Name() string { return "snapshot" }

// Symbols lists the symbols with a loaded snapshot.
func (p *SnapshotProvider) Symbols() []string {
	out := make([]string, 0, len(p.bySymbol))
	for k := range p.bySymbol {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (p *SnapshotProvider) History(_ context.Context, q HistoryQuery) (*model.PriceHistory, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	h, ok := p.bySymbol[strings.ToUpper(strings.TrimSpace(q.Symbol))]
	if !ok {
		return nil, &ProviderError{
			StatusCode: 404,
			Code:       "SYMBOL_NOT_FOUND",
			Message:    fmt.Sprintf("no snapshot for %s", q.Symbol),
		}
	}
	return h.Window(dayOf(q.Start), dayOf(q.End)), nil
}
