package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"field-dash/internal/api/models"
	"field-dash/internal/dashboard"

	"github.com/gin-gonic/gin"
)

// PageHandler renders the HTML dashboards. Charts and downloads are links
// back into the API carrying the same query string.
type PageHandler struct {
	crop  *dashboard.CropDashboard
	stock *dashboard.StockDashboard
}

func NewPageHandler(crop *dashboard.CropDashboard, stock *dashboard.StockDashboard) *PageHandler {
	return &PageHandler{crop: crop, stock: stock}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Title": "Dashboards"})
}

// Crop handles GET /crop
func (h *PageHandler) Crop(c *gin.Context) {
	page := gin.H{"Title": "Crop Dashboard"}

	var q models.CropViewQuery
	err := c.ShouldBindQuery(&q)
	var f dashboard.CropFilter
	if err == nil {
		f, err = cropFilter(q)
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadRequest
		page["Error"] = err.Error()
		q = models.CropViewQuery{}
		f = dashboard.CropFilter{}
	}

	view := h.crop.Apply(f)
	page["View"] = view
	page["PlantFrom"] = view.PlantFrom.Format("2006-01-02")
	page["PlantTo"] = view.PlantTo.Format("2006-01-02")
	page["Locations"] = q.Locations
	page["Crops"] = q.Crops
	page["Query"] = queryOf(c, err == nil)
	c.HTML(status, "crop.html", page)
}

// Stock handles GET /stock
func (h *PageHandler) Stock(c *gin.Context) {
	defaults := h.stock.Defaults()
	page := gin.H{
		"Title":      "Stock Ticker Dashboard",
		"Defaults":   defaults,
		"Options":    h.stock.Companies().Options("", 0),
		"Tickers":    defaults.Tickers,
		"Start":      defaults.Start,
		"End":        defaults.End,
		"ChartTitle": defaults.Figure.Layout.Title,
		"Query":      template.URL(""),
	}

	var q models.StockChartQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		page["Error"] = err.Error()
		c.HTML(http.StatusBadRequest, "stock.html", page)
		return
	}
	if len(q.Tickers) == 0 {
		c.HTML(http.StatusOK, "stock.html", page)
		return
	}

	page["Tickers"], page["Start"], page["End"] = q.Tickers, q.Start, q.End
	res, err := h.stock.Graph(c.Request.Context(), dashboard.GraphRequest{Tickers: q.Tickers, Start: q.Start, End: q.End})
	if err != nil {
		_ = c.Error(err)
		page["Error"] = err.Error()
		status := http.StatusBadGateway
		if errors.Is(err, dashboard.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		c.HTML(status, "stock.html", page)
		return
	}
	page["Result"] = res
	page["ChartTitle"] = res.Figure.Layout.Title
	page["Query"] = queryOf(c, true)
	c.HTML(http.StatusOK, "stock.html", page)
}

// queryOf re-encodes the request query for use in chart and download links.
func queryOf(c *gin.Context, keep bool) template.URL {
	if !keep {
		return ""
	}
	return template.URL(c.Request.URL.Query().Encode())
}
