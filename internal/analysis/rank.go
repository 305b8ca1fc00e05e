package analysis

import (
	"sort"

	"field-dash/internal/model"
)

type RankedSummary struct {
	Rank int `json:"rank"`
	PriceSummary
}

// RankByReturn summarizes each history and sorts descending by TotalReturn.
// Ties keep the input order.
func RankByReturn(histories []*model.PriceHistory) []RankedSummary {
	out := make([]RankedSummary, 0, len(histories))
	for _, h := range histories {
		out = append(out, RankedSummary{PriceSummary: Summarize(h)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalReturn > out[j].TotalReturn
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
