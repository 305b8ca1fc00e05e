package handlers

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strings"
	"time"

	"field-dash/internal/api/models"
	"field-dash/internal/dashboard"
	"field-dash/internal/data"
	"field-dash/internal/model"
	"field-dash/internal/render"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePNG  = "image/png"
)

// Download names keyed by table.
var downloadNames = map[string]string{
	"averages": "plant_averages",
	"filtered": "plant_data_filtered",
	"original": "plant_data",
}

// CropHandler handles crop dashboard requests
type CropHandler struct {
	dash *dashboard.CropDashboard
}

func NewCropHandler(dash *dashboard.CropDashboard) *CropHandler {
	return &CropHandler{dash: dash}
}

// View handles GET /api/v1/crop/view
func (h *CropHandler) View(c *gin.Context) {
	view, ok := h.apply(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.viewResponse(view))
}

// Chart handles GET /api/v1/crop/charts/:chart
func (h *CropHandler) Chart(c *gin.Context) {
	name := c.Param("chart")
	var draw func(io.Writer, *dashboard.CropView) error
	switch name {
	case "area.png":
		draw = func(w io.Writer, v *dashboard.CropView) error { return render.AreaPie(w, v.AreaByCrop) }
	case "days.png":
		draw = func(w io.Writer, v *dashboard.CropView) error { return render.DaysBar(w, v.Averages) }
	case "precip.png":
		draw = func(w io.Writer, v *dashboard.CropView) error {
			return render.PrecipScatter(w, dashboard.PrecipPoints(v.Filtered))
		}
	case "temp.png":
		draw = func(w io.Writer, v *dashboard.CropView) error {
			return render.TempScatter(w, dashboard.TempPoints(v.Filtered))
		}
	default:
		respondError(c, http.StatusNotFound, "UNKNOWN_CHART", fmt.Sprintf("unknown chart %q", name), map[string]interface{}{
			"available": []string{"area.png", "days.png", "precip.png", "temp.png"},
		})
		return
	}

	view, ok := h.apply(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := draw(&buf, view); err != nil {
		respondFailure(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypePNG, buf.Bytes())
}

// Download handles GET /api/v1/crop/download/:table
func (h *CropHandler) Download(c *gin.Context) {
	file := c.Param("table")
	ext := path.Ext(file)
	table := strings.TrimSuffix(file, ext)
	base, known := downloadNames[table]
	if !known || (ext != ".csv" && ext != ".xlsx") {
		respondError(c, http.StatusNotFound, "UNKNOWN_TABLE", fmt.Sprintf("unknown download %q", file), map[string]interface{}{
			"tables":     []string{"averages", "filtered", "original"},
			"extensions": []string{".csv", ".xlsx"},
		})
		return
	}

	view, ok := h.apply(c)
	if !ok {
		return
	}

	ds := h.dash.Dataset()
	var rows []int
	switch table {
	case "filtered":
		rows = dashboard.Rows(view.Filtered)
	case "original":
		rows = dashboard.Rows(view.RangeFiltered)
	}

	var buf bytes.Buffer
	contentType := contentTypeCSV
	var err error
	switch {
	case table == "averages" && ext == ".csv":
		err = data.WriteTableCSV(&buf, data.AveragesTable(view.Averages))
	case table == "averages":
		err = data.WriteTableXLSX(&buf, table, data.AveragesTable(view.Averages))
	case ext == ".csv":
		err = data.WriteRecordsCSV(&buf, ds, rows)
	default:
		err = data.WriteTableXLSX(&buf, table, data.RecordsTable(ds, rows))
	}
	if ext == ".xlsx" {
		contentType = contentTypeXLSX
	}
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, base, ext))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// apply binds the selection and runs the pipeline. It writes the error
// response itself and reports false on bad input.
func (h *CropHandler) apply(c *gin.Context) (*dashboard.CropView, bool) {
	var q models.CropViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return nil, false
	}
	f, err := cropFilter(q)
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	return h.dash.Apply(f), true
}

func cropFilter(q models.CropViewQuery) (dashboard.CropFilter, error) {
	f := dashboard.CropFilter{
		Locations: nonEmpty(q.Locations),
		Crops:     nonEmpty(q.Crops),
		Temp:      rangeOf(q.TempMin, q.TempMax),
		Precip:    rangeOf(q.PrecipMin, q.PrecipMax),
	}
	var err error
	if f.PlantFrom, err = parseDay("plant_from", q.PlantFrom); err != nil {
		return f, err
	}
	if f.PlantTo, err = parseDay("plant_to", q.PlantTo); err != nil {
		return f, err
	}
	if !f.PlantFrom.IsZero() && !f.PlantTo.IsZero() && f.PlantFrom.After(f.PlantTo) {
		return f, fmt.Errorf("plant_from must not be after plant_to")
	}
	if f.Temp != nil {
		if err := f.Temp.Validate("temp"); err != nil {
			return f, err
		}
	}
	if f.Precip != nil {
		if err := f.Precip.Validate("precip"); err != nil {
			return f, err
		}
	}
	return f, nil
}

// rangeOf builds a slider range; a missing end is unbounded.
func rangeOf(lo, hi *float64) *model.Range {
	if lo == nil && hi == nil {
		return nil
	}
	r := model.Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if lo != nil {
		r.Min = *lo
	}
	if hi != nil {
		r.Max = *hi
	}
	return &r
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", field)
	}
	return t, nil
}

func nonEmpty(xs []string) []string {
	var out []string
	for _, x := range xs {
		if x = strings.TrimSpace(x); x != "" {
			out = append(out, x)
		}
	}
	return out
}

func (h *CropHandler) viewResponse(v *dashboard.CropView) models.CropViewResponse {
	avgs := make([]models.CropAverage, len(v.Averages))
	for i, a := range v.Averages {
		avgs[i] = models.CropAverage{Crop: a.Crop}
		if !math.IsNaN(a.TotalDays) {
			days := a.TotalDays
			avgs[i].TotalDays = &days
		}
	}
	return models.CropViewResponse{
		PlantFrom:       v.PlantFrom.Format("2006-01-02"),
		PlantTo:         v.PlantTo.Format("2006-01-02"),
		TempBounds:      v.TempBounds,
		TempRange:       v.TempRange,
		PrecipBounds:    v.PrecipBounds,
		PrecipRange:     v.PrecipRange,
		LocationOptions: v.LocationOptions,
		CropOptions:     v.CropOptions,
		Averages:        avgs,
		AreaByCrop:      v.AreaByCrop,
		PrecipPoints:    dashboard.PrecipPoints(v.Filtered),
		TempPoints:      dashboard.TempPoints(v.Filtered),
		Counts: models.CropCounts{
			Total:         len(h.dash.Dataset().Records),
			RangeFiltered: len(v.RangeFiltered),
			Filtered:      len(v.Filtered),
		},
	}
}
