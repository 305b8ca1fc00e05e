package data

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"field-dash/internal/model"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source column names of the crop calendar / climate CSV.
const (
	ColCrop             = "Crop"
	ColLocation         = "Location"
	ColPlantStart       = "Plant.start.date"
	ColPlantEnd         = "Plant.end.date"
	ColHarvestStart     = "Harvest.start.date"
	ColHarvestEnd       = "Harvest.end.date"
	ColTempMin          = "temp.min"
	ColTempMax          = "temp.max"
	ColPrecipMin        = "precip.min"
	ColPrecipMax        = "precip.max"
	ColHarvestedArea    = "harvested.area"
	ColTotalDays        = "tot.days"
	ColPlantMedian      = "Plant.median"
	ColPrecipAtPlanting = "precip.at.planting"
	ColTempAtPlanting   = "temp.at.planting"
)

// Derived date columns appended by the loader, keyed by their source column.
var derivedDateCols = []struct{ src, dst string }{
	{ColPlantStart, "Plant.start.datetime"},
	{ColPlantEnd, "Plant.end.datetime"},
	{ColHarvestStart, "Harvest.start.datetime"},
	{ColHarvestEnd, "Harvest.end.datetime"},
}

var requiredCropCols = []string{
	ColCrop, ColLocation,
	ColPlantStart, ColPlantEnd, ColHarvestStart, ColHarvestEnd,
	ColTempMin, ColTempMax, ColPrecipMin, ColPrecipMax,
	ColHarvestedArea, ColTotalDays, ColPlantMedian,
	ColPrecipAtPlanting, ColTempAtPlanting,
}

// CropDataset is the loaded crop CSV: the raw frame (plus derived date
// columns) for exports, and typed records for filtering.
type CropDataset struct {
	Frame   dataframe.DataFrame
	Records []model.CropRecord
	Year    int
}

// LoadCropCSV loads a crop dataset from a CSV file.
func LoadCropCSV(path string, year int) (*CropDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open crop data: %w", err)
	}
	defer f.Close()
	return ReadCropCSV(f, year)
}

// ReadCropCSV parses crop CSV content. Every column is read as text and
// numeric fields are parsed per record, so one bad cell never fails the load.
func ReadCropCSV(r io.Reader, year int) (*CropDataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse crop data: %w", df.Err)
	}
	df = blankMissing(df)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to clean crop data: %w", df.Err)
	}

	have := map[string]bool{}
	for _, n := range df.Names() {
		have[n] = true
	}
	var missing []string
	for _, c := range requiredCropCols {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("crop data is missing columns: %s", strings.Join(missing, ", "))
	}

	cols := map[string][]string{}
	for _, c := range requiredCropCols {
		cols[c] = df.Col(c).Records()
	}

	n := df.Nrow()
	records := make([]model.CropRecord, n)
	for i := 0; i < n; i++ {
		records[i] = model.CropRecord{
			Row:              i,
			Crop:             cols[ColCrop][i],
			Location:         cols[ColLocation][i],
			PlantStart:       parseMonthDay(cols[ColPlantStart][i], year),
			PlantEnd:         parseMonthDay(cols[ColPlantEnd][i], year),
			HarvestStart:     parseMonthDay(cols[ColHarvestStart][i], year),
			HarvestEnd:       parseMonthDay(cols[ColHarvestEnd][i], year),
			TempMin:          parseNumber(cols[ColTempMin][i]),
			TempMax:          parseNumber(cols[ColTempMax][i]),
			PrecipMin:        parseNumber(cols[ColPrecipMin][i]),
			PrecipMax:        parseNumber(cols[ColPrecipMax][i]),
			HarvestedArea:    parseNumber(cols[ColHarvestedArea][i]),
			TotalDays:        parseNumber(cols[ColTotalDays][i]),
			PlantMedian:      parseNumber(cols[ColPlantMedian][i]),
			PrecipAtPlanting: parseNumber(cols[ColPrecipAtPlanting][i]),
			TempAtPlanting:   parseNumber(cols[ColTempAtPlanting][i]),
		}
	}

	for _, d := range derivedDateCols {
		vals := make([]string, n)
		for i, raw := range cols[d.src] {
			vals[i] = fmtTime(parseMonthDay(raw, year))
		}
		df = df.Mutate(series.New(vals, series.String, d.dst))
	}
	if df.Err != nil {
		return nil, fmt.Errorf("failed to add derived columns: %w", df.Err)
	}

	return &CropDataset{Frame: df, Records: records, Year: year}, nil
}

// missingMarkers are source cells that mean "no value". They are blanked so
// downloads write empty cells for them.
var missingMarkers = map[string]bool{"NA": true, "NaN": true, "nan": true, "<nil>": true}

func blankMissing(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		vals := df.Col(name).Records()
		changed := false
		for i, v := range vals {
			if missingMarkers[strings.TrimSpace(v)] {
				vals[i] = ""
				changed = true
			}
		}
		if changed {
			df = df.Mutate(series.New(vals, series.String, name))
		}
	}
	return df
}

// parseMonthDay turns an "M/D" cell into a date in the given year. Empty or
// malformed cells yield the zero time.
func parseMonthDay(s string, year int) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("1/2/2006", s+"/"+strconv.Itoa(year))
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
