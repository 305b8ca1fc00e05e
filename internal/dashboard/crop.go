package dashboard

import (
	"math"
	"sort"
	"time"

	"field-dash/internal/data"
	"field-dash/internal/model"
	"field-dash/internal/observability"

	"github.com/montanaflynn/stats"
)

// CropFilter is the user's selection on the crop dashboard. Zero values mean
// "no restriction": the full calendar year, the full slider bounds, every
// location and every crop.
type CropFilter struct {
	PlantFrom time.Time
	PlantTo   time.Time

	Temp   *model.Range
	Precip *model.Range

	Locations []string
	Crops     []string
}

// CropView is the result of running a CropFilter through the pipeline.
type CropView struct {
	PlantFrom time.Time
	PlantTo   time.Time

	// Slider bounds, each computed from the rows that reached that step.
	TempBounds   model.Range
	PrecipBounds model.Range
	// Ranges actually applied after clamping into the bounds.
	TempRange   model.Range
	PrecipRange model.Range

	LocationOptions []string
	CropOptions     []string

	// RangeFiltered holds rows after the date, temperature and precipitation
	// steps; Filtered additionally applies the location and crop selections.
	RangeFiltered []model.CropRecord
	Filtered      []model.CropRecord

	Averages   []model.CropAverage
	AreaByCrop []model.CropArea
}

// CropDashboard runs the crop filter pipeline over a dataset loaded once at
// startup. It is safe for concurrent use.
type CropDashboard struct {
	ds      *data.CropDataset
	metrics *observability.Metrics
}

func NewCropDashboard(ds *data.CropDataset, metrics *observability.Metrics) *CropDashboard {
	return &CropDashboard{ds: ds, metrics: metrics}
}

func (d *CropDashboard) Dataset() *data.CropDataset { return d.ds }

// YearBounds returns Jan 1 and Dec 31 of the dataset's calendar year.
func (d *CropDashboard) YearBounds() (time.Time, time.Time) {
	return time.Date(d.ds.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(d.ds.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Apply runs the pipeline: planting date range, temperature range,
// precipitation range, locations, crops. Each step sees only the rows the
// previous step kept.
func (d *CropDashboard) Apply(f CropFilter) *CropView {
	v := &CropView{}
	v.PlantFrom, v.PlantTo = d.YearBounds()
	if !f.PlantFrom.IsZero() {
		v.PlantFrom = f.PlantFrom
	}
	if !f.PlantTo.IsZero() {
		v.PlantTo = f.PlantTo
	}

	rows := filterRecords(d.ds.Records, func(r model.CropRecord) bool {
		return !r.PlantStart.IsZero() &&
			!r.PlantStart.Before(v.PlantFrom) &&
			!r.PlantStart.After(v.PlantTo)
	})

	v.TempBounds = bounds(rows, func(r model.CropRecord) (float64, float64) { return r.TempMin, r.TempMax })
	v.TempRange = selectRange(v.TempBounds, f.Temp)
	rows = filterRecords(rows, func(r model.CropRecord) bool {
		return r.TempMin >= v.TempRange.Min && r.TempMax <= v.TempRange.Max
	})

	v.PrecipBounds = bounds(rows, func(r model.CropRecord) (float64, float64) { return r.PrecipMin, r.PrecipMax })
	v.PrecipRange = selectRange(v.PrecipBounds, f.Precip)
	rows = filterRecords(rows, func(r model.CropRecord) bool {
		return r.PrecipMin >= v.PrecipRange.Min && r.PrecipMax <= v.PrecipRange.Max
	})
	v.RangeFiltered = rows

	v.LocationOptions = distinct(rows, func(r model.CropRecord) string { return r.Location })
	if len(f.Locations) > 0 {
		want := toSet(f.Locations)
		rows = filterRecords(rows, func(r model.CropRecord) bool { return want[r.Location] })
	}

	v.CropOptions = distinct(rows, func(r model.CropRecord) string { return r.Crop })
	if len(f.Crops) > 0 {
		want := toSet(f.Crops)
		rows = filterRecords(rows, func(r model.CropRecord) bool { return want[r.Crop] })
	}
	v.Filtered = rows

	v.Averages = AverageDaysByCrop(rows)
	v.AreaByCrop = AreaByCrop(rows)

	if d.metrics != nil {
		d.metrics.CropRowsFiltered.Observe(float64(len(rows)))
	}
	return v
}

// Rows returns the frame row indexes of recs, for exports.
func Rows(recs []model.CropRecord) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.Row
	}
	return out
}

// AverageDaysByCrop groups by crop (sorted ascending) and takes the mean of
// tot.days, rounded half to even. Crops with no usable value average to NaN.
func AverageDaysByCrop(recs []model.CropRecord) []model.CropAverage {
	groups := map[string][]float64{}
	for _, r := range recs {
		if _, ok := groups[r.Crop]; !ok {
			groups[r.Crop] = nil
		}
		if !math.IsNaN(r.TotalDays) {
			groups[r.Crop] = append(groups[r.Crop], r.TotalDays)
		}
	}
	out := make([]model.CropAverage, 0, len(groups))
	for crop, vals := range groups {
		mean, err := stats.Mean(vals)
		if err != nil {
			mean = math.NaN()
		}
		out = append(out, model.CropAverage{Crop: crop, TotalDays: math.RoundToEven(mean)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Crop < out[j].Crop })
	return out
}

// AreaByCrop sums harvested area per crop, sorted by crop. NaN areas are
// skipped.
func AreaByCrop(recs []model.CropRecord) []model.CropArea {
	sums := map[string]float64{}
	for _, r := range recs {
		if math.IsNaN(r.HarvestedArea) {
			if _, ok := sums[r.Crop]; !ok {
				sums[r.Crop] = 0
			}
			continue
		}
		sums[r.Crop] += r.HarvestedArea
	}
	out := make([]model.CropArea, 0, len(sums))
	for crop, s := range sums {
		out = append(out, model.CropArea{Crop: crop, HarvestedArea: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Crop < out[j].Crop })
	return out
}

// ScatterPoint is one marker of a planting scatter chart.
type ScatterPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Group string  `json:"group"`
}

// PrecipPoints plots precipitation at planting against the planting median,
// sized by harvested area.
func PrecipPoints(recs []model.CropRecord) []ScatterPoint {
	return points(recs, func(r model.CropRecord) (float64, float64) { return r.PrecipAtPlanting, r.HarvestedArea })
}

// TempPoints plots temperature at planting against the planting median,
// sized by growing days.
func TempPoints(recs []model.CropRecord) []ScatterPoint {
	return points(recs, func(r model.CropRecord) (float64, float64) { return r.TempAtPlanting, r.TotalDays })
}

func points(recs []model.CropRecord, ySize func(model.CropRecord) (float64, float64)) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(recs))
	for _, r := range recs {
		y, size := ySize(r)
		if math.IsNaN(r.PlantMedian) || math.IsNaN(y) {
			continue
		}
		if math.IsNaN(size) {
			size = 0
		}
		out = append(out, ScatterPoint{X: r.PlantMedian, Y: y, Size: size, Group: r.Crop})
	}
	return out
}

func filterRecords(recs []model.CropRecord, keep func(model.CropRecord) bool) []model.CropRecord {
	out := make([]model.CropRecord, 0, len(recs))
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// bounds is min over the low column and max over the high column. Empty
// input gives the zero range.
func bounds(recs []model.CropRecord, lohi func(model.CropRecord) (float64, float64)) model.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range recs {
		l, h := lohi(r)
		if !math.IsNaN(l) && l < lo {
			lo = l
		}
		if !math.IsNaN(h) && h > hi {
			hi = h
		}
	}
	if math.IsInf(lo, 1) || math.IsInf(hi, -1) {
		return model.Range{}
	}
	return model.Range{Min: lo, Max: hi}
}

func selectRange(b model.Range, user *model.Range) model.Range {
	if user == nil {
		return b
	}
	return b.Clamp(*user)
}

func distinct(recs []model.CropRecord, key func(model.CropRecord) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range recs {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}
