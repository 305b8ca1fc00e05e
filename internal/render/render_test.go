package render

import (
	"bytes"
	"math"
	"testing"

	"field-dash/internal/dashboard"
	"field-dash/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func assertPNG(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	require.Greater(t, buf.Len(), len(pngMagic))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output is a PNG")
}

func TestAreaPie(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, AreaPie(&buf, []model.CropArea{
		{Crop: "Maize", HarvestedArea: 300},
		{Crop: "Wheat", HarvestedArea: 320.5},
	}))
	assertPNG(t, &buf)

	assert.ErrorIs(t, AreaPie(&bytes.Buffer{}, nil), ErrNoData)
	assert.ErrorIs(t, AreaPie(&bytes.Buffer{}, []model.CropArea{{Crop: "Maize"}}), ErrNoData)
}

func TestDaysBar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DaysBar(&buf, []model.CropAverage{
		{Crop: "Maize", TotalDays: 158},
		{Crop: "Rice", TotalDays: 145},
	}))
	assertPNG(t, &buf)

	buf.Reset()
	require.NoError(t, DaysBar(&buf, []model.CropAverage{{Crop: "Rice", TotalDays: 145}}), "single bar")
	assertPNG(t, &buf)

	assert.ErrorIs(t, DaysBar(&bytes.Buffer{}, []model.CropAverage{{Crop: "Rice", TotalDays: math.NaN()}}), ErrNoData)
}

func TestScatters(t *testing.T) {
	pts := []dashboard.ScatterPoint{
		{X: 130, Y: 80.2, Size: 300, Group: "Maize"},
		{X: 135, Y: 85, Size: 0, Group: "Maize"},
		{X: 150, Y: 100, Size: 90, Group: "Soybeans"},
	}
	var buf bytes.Buffer
	require.NoError(t, PrecipScatter(&buf, pts))
	assertPNG(t, &buf)

	buf.Reset()
	require.NoError(t, TempScatter(&buf, pts[:1]), "single point")
	assertPNG(t, &buf)

	assert.ErrorIs(t, TempScatter(&bytes.Buffer{}, nil), ErrNoData)
}

func TestFigure_Dates(t *testing.T) {
	fig := dashboard.Figure{
		Data: []dashboard.Trace{
			{Name: "AAPL", X: []any{"2018-01-02", "2018-01-03"}, Y: []float64{172.26, 172.23}},
			{Name: "MSFT", X: []any{"2018-01-02", "2018-01-03"}, Y: []float64{85.95, 86.35}},
		},
		Layout: dashboard.Layout{Title: "AAPL, MSFT"},
	}
	var buf bytes.Buffer
	require.NoError(t, Figure(&buf, fig))
	assertPNG(t, &buf)

	buf.Reset()
	single := dashboard.Figure{Data: []dashboard.Trace{{Name: "AAPL", X: []any{"2018-01-02"}, Y: []float64{172.26}}}}
	require.NoError(t, Figure(&buf, single), "single day")
	assertPNG(t, &buf)
}

func TestFigure_Default(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Figure(&buf, dashboard.DefaultFigure()))
	assertPNG(t, &buf)
}

func TestFigure_Errors(t *testing.T) {
	empty := dashboard.Figure{Data: []dashboard.Trace{{Name: "AAPL", X: []any{}, Y: []float64{}}}}
	assert.ErrorIs(t, Figure(&bytes.Buffer{}, empty), ErrNoData)

	mixed := dashboard.Figure{Data: []dashboard.Trace{{X: []any{"2018-01-02", 3}, Y: []float64{1, 2}}}}
	err := Figure(&bytes.Buffer{}, mixed)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestDotWidth(t *testing.T) {
	assert.Equal(t, minDot, dotWidth(0, 100))
	assert.Equal(t, maxDot, dotWidth(100, 100))
	assert.Equal(t, minDot, dotWidth(5, 0))
	assert.InDelta(t, minDot+(maxDot-minDot)*0.5, dotWidth(25, 100), 1e-9)
}
