package data

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"field-dash/internal/model"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CompanyList is the set of selectable ticker symbols.
type CompanyList struct {
	Companies []model.Company
	bySymbol  map[string]model.Company
}

// LoadCompanies loads a company list CSV with Symbol and Name columns
// (the NASDAQ company list layout; other columns are ignored).
func LoadCompanies(filePath string) (*CompanyList, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read company list: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse company list: %w", df.Err)
	}
	hasSymbol, hasName := false, false
	for _, n := range df.Names() {
		hasSymbol = hasSymbol || n == "Symbol"
		hasName = hasName || n == "Name"
	}
	if !hasSymbol || !hasName {
		return nil, fmt.Errorf("company list must have Symbol and Name columns")
	}

	symbols := df.Col("Symbol").Records()
	names := df.Col("Name").Records()
	companies := make([]model.Company, 0, len(symbols))
	for i, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		companies = append(companies, model.Company{Symbol: sym, Name: strings.TrimSpace(names[i])})
	}
	return NewCompanyList(companies), nil
}

// NewCompanyList indexes companies by symbol. File order is kept.
func NewCompanyList(companies []model.Company) *CompanyList {
	l := &CompanyList{Companies: companies, bySymbol: make(map[string]model.Company, len(companies))}
	for _, c := range companies {
		l.bySymbol[strings.ToUpper(c.Symbol)] = c
	}
	return l
}

// Lookup finds a company by symbol, case-insensitively.
func (l *CompanyList) Lookup(symbol string) (model.Company, bool) {
	if l == nil {
		return model.Company{}, false
	}
	c, ok := l.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return c, ok
}

// Options returns dropdown options whose label contains query
// (case-insensitive). An empty query returns everything. At most limit
// entries are returned when limit > 0.
func (l *CompanyList) Options(query string, limit int) []model.Option {
	if l == nil {
		return []model.Option{}
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.Option{}
	for _, c := range l.Companies {
		opt := c.Option()
		if q != "" && !strings.Contains(strings.ToLower(opt.Label), q) {
			continue
		}
		out = append(out, opt)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Symbols returns all symbols in sorted order.
func (l *CompanyList) Symbols() []string {
	out := make([]string, 0, len(l.bySymbol))
	for _, c := range l.Companies {
		out = append(out, c.Symbol)
	}
	sort.Strings(out)
	return out
}
