// Package render draws the dashboard charts as PNG images with go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"field-dash/internal/dashboard"
	"field-dash/internal/model"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

const (
	Width  = 960
	Height = 540

	minDot = 3.0
	maxDot = 18.0
)

// Chart titles and axis names shown on the crop dashboard.
const (
	AreaTitle       = "Harvest Area by Crop"
	DaysTitle       = "Average Growing Days by Crop"
	PrecipTitle     = "Precipitation during Middle of Planting"
	TempTitle       = "Temperature during Middle of Planting"
	PlantMedianAxis = "Middle of Planting, day of year (1 = Jan 1, 365 = Dec 31)"
	PrecipAxis      = "Average Precipitation at Planting, mm/month"
	TempAxis        = "Average Temperature at Planting, degrees C"
)

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}}
}

// AreaPie renders harvested area per crop.
func AreaPie(w io.Writer, areas []model.CropArea) error {
	values := make([]chart.Value, 0, len(areas))
	total := 0.0
	for _, a := range areas {
		if a.HarvestedArea <= 0 {
			continue
		}
		total += a.HarvestedArea
		values = append(values, chart.Value{Label: a.Crop, Value: a.HarvestedArea})
	}
	if total <= 0 {
		return ErrNoData
	}
	pie := chart.PieChart{
		Title:      AreaTitle,
		Width:      Height,
		Height:     Height,
		Background: background(),
		Values:     values,
	}
	return pie.Render(chart.PNG, w)
}

// DaysBar renders average growing days per crop.
func DaysBar(w io.Writer, avgs []model.CropAverage) error {
	bars := make([]chart.Value, 0, len(avgs))
	top := 0.0
	for _, a := range avgs {
		if math.IsNaN(a.TotalDays) {
			continue
		}
		bars = append(bars, chart.Value{Label: a.Crop, Value: a.TotalDays})
		top = math.Max(top, a.TotalDays)
	}
	if len(bars) == 0 {
		return ErrNoData
	}
	if top <= 0 {
		top = 1
	}
	bar := chart.BarChart{
		Title:      DaysTitle,
		Width:      Width,
		Height:     Height,
		Background: background(),
		BarWidth:   40,
		YAxis: chart.YAxis{
			Name:  "tot.days",
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
	return bar.Render(chart.PNG, w)
}

// PrecipScatter renders precipitation at planting, sized by harvested area
// and coloured by crop.
func PrecipScatter(w io.Writer, pts []dashboard.ScatterPoint) error {
	return scatter(w, PrecipTitle, PrecipAxis, pts)
}

// TempScatter renders temperature at planting, sized by growing days and
// coloured by crop.
func TempScatter(w io.Writer, pts []dashboard.ScatterPoint) error {
	return scatter(w, TempTitle, TempAxis, pts)
}

func scatter(w io.Writer, title, yName string, pts []dashboard.ScatterPoint) error {
	if len(pts) == 0 {
		return ErrNoData
	}

	groups := map[string][]dashboard.ScatterPoint{}
	var names []string
	maxSize := 0.0
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		if _, ok := groups[p.Group]; !ok {
			names = append(names, p.Group)
		}
		groups[p.Group] = append(groups[p.Group], p)
		maxSize = math.Max(maxSize, p.Size)
		xMin, xMax = math.Min(xMin, p.X), math.Max(xMax, p.X)
		yMin, yMax = math.Min(yMin, p.Y), math.Max(yMax, p.Y)
	}
	sort.Strings(names)

	series := make([]chart.Series, 0, len(names))
	for i, name := range names {
		g := groups[name]
		xs := make([]float64, len(g))
		ys := make([]float64, len(g))
		widths := make([]float64, len(g))
		for j, p := range g {
			xs[j], ys[j] = p.X, p.Y
			widths[j] = dotWidth(p.Size, maxSize)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    colorFor(i),
				DotWidth:    minDot,
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					return widths[index]
				},
			},
		})
	}

	ch := chart.Chart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		Background: background(),
		XAxis:      chart.XAxis{Name: PlantMedianAxis, Range: padded(xMin, xMax)},
		YAxis:      chart.YAxis{Name: yName, Range: padded(yMin, yMax)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// Figure renders a dashboard figure as lines, one per trace. Traces whose X
// values are YYYY-MM-DD strings are drawn on a time axis, numeric X values
// on a continuous axis.
func Figure(w io.Writer, fig dashboard.Figure) error {
	series := make([]chart.Series, 0, len(fig.Data))
	timeAxis := false
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for i, tr := range fig.Data {
		n := min(len(tr.X), len(tr.Y))
		if n == 0 {
			continue
		}
		ys := tr.Y[:n]
		for _, y := range ys {
			yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
		}
		style := chart.Style{StrokeColor: colorFor(i), StrokeWidth: 2}

		if times, ok := timeValues(tr.X[:n]); ok {
			timeAxis = true
			for _, t := range times {
				x := float64(t.UnixNano())
				xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
			}
			series = append(series, chart.TimeSeries{Name: tr.Name, XValues: times, YValues: ys, Style: style})
			continue
		}
		xs, ok := floatValues(tr.X[:n])
		if !ok {
			return fmt.Errorf("trace %d: x values must be all dates or all numbers", i)
		}
		for _, x := range xs {
			xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
		}
		series = append(series, chart.ContinuousSeries{Name: tr.Name, XValues: xs, YValues: ys, Style: style})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	xAxis := chart.XAxis{Range: padded(xMin, xMax)}
	if timeAxis {
		// A single trading day has a zero-width x range; widen it by a day.
		lo, hi := xMin, xMax
		if hi <= lo {
			lo -= float64(12 * time.Hour)
			hi += float64(12 * time.Hour)
		}
		xAxis = chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		}
	}

	ch := chart.Chart{
		Title:      fig.Layout.Title,
		Width:      Width,
		Height:     Height,
		Background: background(),
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Range: padded(yMin, yMax)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func timeValues(xs []any) ([]time.Time, bool) {
	out := make([]time.Time, len(xs))
	for i, x := range xs {
		s, ok := x.(string)
		if !ok {
			return nil, false
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func floatValues(xs []any) ([]float64, bool) {
	out := make([]float64, len(xs))
	for i, x := range xs {
		switch v := x.(type) {
		case float64:
			out[i] = v
		case int:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		default:
			return nil, false
		}
	}
	return out, true
}

func colorFor(i int) drawing.Color {
	return chart.GetDefaultColor(i)
}

// dotWidth maps a size value onto a marker width, area-proportional.
func dotWidth(size, maxSize float64) float64 {
	if maxSize <= 0 || size <= 0 {
		return minDot
	}
	return minDot + (maxDot-minDot)*math.Sqrt(size/maxSize)
}

// padded widens [lo, hi] by 5% on each side, or by one unit when the range
// is empty.
func padded(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
