package dashboard

import (
	"math"
	"testing"
	"time"

	"field-dash/internal/data"
	"field-dash/internal/model"
	"field-dash/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDashboard(t *testing.T) *CropDashboard {
	t.Helper()
	ds, err := data.LoadCropCSV("../data/testdata/crops.csv", 2004)
	require.NoError(t, err)
	return NewCropDashboard(ds, nil)
}

func crops(recs []model.CropRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Location + "/" + r.Crop
	}
	return out
}

func TestApply_Defaults(t *testing.T) {
	d := loadDashboard(t)
	v := d.Apply(CropFilter{})

	from, to := d.YearBounds()
	assert.Equal(t, from, v.PlantFrom)
	assert.Equal(t, to, v.PlantTo)

	// The Bihar row has no planting date and never passes the date filter.
	require.Len(t, v.RangeFiltered, 6)
	assert.Equal(t, v.RangeFiltered, v.Filtered, "empty selections do not filter")

	assert.Equal(t, model.Range{Min: 0.5, Max: 35}, v.TempBounds)
	assert.Equal(t, v.TempBounds, v.TempRange)
	assert.Equal(t, model.Range{Min: 5, Max: 300}, v.PrecipBounds)

	assert.Equal(t, []string{"Kansas", "Punjab", "Iowa"}, v.LocationOptions)
	assert.Equal(t, []string{"Wheat", "Maize", "Rice", "Soybeans"}, v.CropOptions)

	assert.Equal(t, []model.CropAverage{
		{Crop: "Maize", TotalDays: 158},
		{Crop: "Rice", TotalDays: 145},
		{Crop: "Soybeans", TotalDays: 138},
		{Crop: "Wheat", TotalDays: 218},
	}, v.Averages)

	assert.Equal(t, []model.CropArea{
		{Crop: "Maize", HarvestedArea: 300},
		{Crop: "Rice", HarvestedArea: 150},
		{Crop: "Soybeans", HarvestedArea: 90},
		{Crop: "Wheat", HarvestedArea: 320.5},
	}, v.AreaByCrop)
}

func TestApply_PlantingDateRange(t *testing.T) {
	d := loadDashboard(t)
	v := d.Apply(CropFilter{
		PlantFrom: time.Date(2004, 4, 1, 0, 0, 0, 0, time.UTC),
		PlantTo:   time.Date(2004, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, []string{"Kansas/Maize", "Punjab/Rice", "Iowa/Maize", "Iowa/Soybeans"}, crops(v.Filtered),
		"range is inclusive on both ends")
	assert.Equal(t, model.Range{Min: 4, Max: 34}, v.TempBounds, "bounds come from the date-filtered rows")
}

func TestApply_TemperatureThenPrecipitationBounds(t *testing.T) {
	d := loadDashboard(t)
	v := d.Apply(CropFilter{Temp: &model.Range{Min: 5, Max: 30}})

	assert.Equal(t, model.Range{Min: 5, Max: 30}, v.TempRange)
	assert.Equal(t, []string{"Kansas/Maize", "Iowa/Soybeans"}, crops(v.RangeFiltered))
	assert.Equal(t, model.Range{Min: 28, Max: 115}, v.PrecipBounds, "precip bounds see only the temperature-filtered rows")
	assert.Equal(t, []string{"Kansas", "Iowa"}, v.LocationOptions)
}

func TestApply_RangeIsClampedIntoBounds(t *testing.T) {
	d := loadDashboard(t)
	v := d.Apply(CropFilter{Precip: &model.Range{Min: -100, Max: 1000}})

	assert.Equal(t, v.PrecipBounds, v.PrecipRange)
	assert.Len(t, v.RangeFiltered, 6)
}

func TestApply_LocationThenCrop(t *testing.T) {
	d := loadDashboard(t)
	v := d.Apply(CropFilter{Locations: []string{"Kansas", "Punjab"}})

	assert.Equal(t, []string{"Kansas", "Punjab", "Iowa"}, v.LocationOptions, "location options ignore the location selection")
	assert.Equal(t, []string{"Wheat", "Maize", "Rice"}, v.CropOptions, "crop options follow the location selection")
	assert.Len(t, v.RangeFiltered, 6)
	assert.Len(t, v.Filtered, 4)

	v = d.Apply(CropFilter{Locations: []string{"Kansas", "Punjab"}, Crops: []string{"Wheat"}})
	assert.Equal(t, []string{"Kansas/Wheat", "Punjab/Wheat"}, crops(v.Filtered))
	assert.Equal(t, []model.CropAverage{{Crop: "Wheat", TotalDays: 218}}, v.Averages)
	assert.Equal(t, []int{0, 2}, Rows(v.Filtered))
}

func TestApply_EmptyResult(t *testing.T) {
	d := loadDashboard(t)
	v := d.Apply(CropFilter{
		PlantFrom: time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC),
		PlantTo:   time.Date(2004, 1, 31, 0, 0, 0, 0, time.UTC),
	})

	assert.Empty(t, v.Filtered)
	assert.Equal(t, model.Range{}, v.TempBounds)
	assert.Equal(t, model.Range{}, v.PrecipBounds)
	assert.Empty(t, v.LocationOptions)
	assert.Empty(t, v.CropOptions)
	assert.Empty(t, v.Averages)
	assert.Empty(t, v.AreaByCrop)
}

func TestApply_ObservesFilteredRows(t *testing.T) {
	ds, err := data.LoadCropCSV("../data/testdata/crops.csv", 2004)
	require.NoError(t, err)
	m := observability.NewMetricsForTesting()

	NewCropDashboard(ds, m).Apply(CropFilter{})
	assert.Equal(t, 1, testutil.CollectAndCount(m.CropRowsFiltered))
}

func TestAverageDaysByCrop_RoundsHalfToEven(t *testing.T) {
	avgs := AverageDaysByCrop([]model.CropRecord{
		{Crop: "B", TotalDays: 2},
		{Crop: "B", TotalDays: 3},
		{Crop: "A", TotalDays: 1},
		{Crop: "A", TotalDays: 2},
		{Crop: "C", TotalDays: math.NaN()},
	})
	require.Len(t, avgs, 3)
	assert.Equal(t, model.CropAverage{Crop: "A", TotalDays: 2}, avgs[0])
	assert.Equal(t, model.CropAverage{Crop: "B", TotalDays: 2}, avgs[1])
	assert.Equal(t, "C", avgs[2].Crop)
	assert.True(t, math.IsNaN(avgs[2].TotalDays))
}

func TestScatterPoints(t *testing.T) {
	d := loadDashboard(t)
	v := d.Apply(CropFilter{Locations: []string{"Iowa"}})

	precip := PrecipPoints(v.Filtered)
	require.Len(t, precip, 2)
	assert.Equal(t, ScatterPoint{X: 135, Y: 85, Size: 0, Group: "Maize"}, precip[0], "missing area draws a zero-size marker")
	assert.Equal(t, ScatterPoint{X: 150, Y: 100, Size: 90, Group: "Soybeans"}, precip[1])

	temp := TempPoints(v.Filtered)
	require.Len(t, temp, 2)
	assert.Equal(t, ScatterPoint{X: 135, Y: 17.5, Size: 155, Group: "Maize"}, temp[0])
}
