package handlers

import (
	"net/http"
	"strings"

	"field-dash/internal/api/models"
	"field-dash/internal/dashboard"

	"github.com/gin-gonic/gin"
)

const defaultRankLimit = 10

// RankHandler handles ranking-related requests
type RankHandler struct {
	dash *dashboard.StockDashboard
}

func NewRankHandler(dash *dashboard.StockDashboard) *RankHandler {
	return &RankHandler{dash: dash}
}

// RankTickers handles GET /api/v1/stock/rank
func (h *RankHandler) RankTickers(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	var tickers []string
	for _, t := range strings.Split(req.Tickers, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}

	res, err := h.dash.Graph(c.Request.Context(), dashboard.GraphRequest{
		Tickers: tickers,
		Start:   req.StartDate,
		End:     req.EndDate,
	})
	if err != nil {
		respondFailure(c, err)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultRankLimit
	}
	ranked := res.Ranking
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}

	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{
			Rank:         r.Rank,
			Symbol:       r.Symbol,
			Count:        r.Count,
			SpreadP95P05: r.SpreadP95P05,
			MinClose:     r.MinClose,
			MaxClose:     r.MaxClose,
			TotalReturn:  r.TotalReturn,
			Volatility:   r.StdDevReturn,
			MaxDrawdown:  r.MaxDrawdown,
		}
	}
	c.JSON(http.StatusOK, models.RankResponse{Rankings: rankings})
}
