package handlers

import (
	"net/http"

	"field-dash/internal/api/models"
	"field-dash/internal/dashboard"

	"github.com/gin-gonic/gin"
)

// DatasetHandler describes the loaded datasets.
type DatasetHandler struct {
	crop  *dashboard.CropDashboard
	stock *dashboard.StockDashboard
}

func NewDatasetHandler(crop *dashboard.CropDashboard, stock *dashboard.StockDashboard) *DatasetHandler {
	return &DatasetHandler{crop: crop, stock: stock}
}

// ListDatasets handles GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	ds := h.crop.Dataset()
	view := h.crop.Apply(dashboard.CropFilter{})
	from, to := h.crop.YearBounds()

	companies := 0
	if list := h.stock.Companies(); list != nil {
		companies = len(list.Companies)
	}

	c.JSON(http.StatusOK, models.DatasetsResponse{
		Crop: models.CropDatasetInfo{
			Rows:         len(ds.Records),
			CalendarYear: ds.Year,
			Columns:      ds.Frame.Names(),
			Locations:    view.LocationOptions,
			Crops:        view.CropOptions,
			PlantFrom:    from.Format("2006-01-02"),
			PlantTo:      to.Format("2006-01-02"),
		},
		Stock: models.StockDatasetInfo{
			Provider:  h.stock.ProviderName(),
			Companies: companies,
		},
	})
}
