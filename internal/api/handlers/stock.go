package handlers

import (
	"bytes"
	"net/http"

	"field-dash/internal/api/models"
	"field-dash/internal/dashboard"
	"field-dash/internal/render"

	"github.com/gin-gonic/gin"
)

const defaultSymbolLimit = 50

// StockHandler handles stock dashboard requests
type StockHandler struct {
	dash *dashboard.StockDashboard
}

func NewStockHandler(dash *dashboard.StockDashboard) *StockHandler {
	return &StockHandler{dash: dash}
}

// Defaults handles GET /api/v1/stock/default
func (h *StockHandler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, h.dash.Defaults())
}

// Graph handles POST /api/v1/stock/graph
func (h *StockHandler) Graph(c *gin.Context) {
	var req models.StockGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.dash.Graph(c.Request.Context(), dashboard.GraphRequest{
		Tickers: req.Tickers,
		Start:   req.Start,
		End:     req.End,
	})
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Chart handles GET /api/v1/stock/chart.png
func (h *StockHandler) Chart(c *gin.Context) {
	var q models.StockChartQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	fig := dashboard.DefaultFigure()
	if len(q.Tickers) > 0 {
		res, err := h.dash.Graph(c.Request.Context(), dashboard.GraphRequest{
			Tickers: q.Tickers,
			Start:   q.Start,
			End:     q.End,
		})
		if err != nil {
			respondFailure(c, err)
			return
		}
		fig = res.Figure
	}

	var buf bytes.Buffer
	if err := render.Figure(&buf, fig); err != nil {
		respondFailure(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypePNG, buf.Bytes())
}

// Symbols handles GET /api/v1/symbols
func (h *StockHandler) Symbols(c *gin.Context) {
	var q models.SymbolsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultSymbolLimit
	}
	opts := h.dash.Companies().Options(q.Q, limit)
	c.JSON(http.StatusOK, models.SymbolsResponse{Options: opts, Count: len(opts)})
}
