package model

import (
	"fmt"
	"math"
	"time"
)

// CropRecord is one row of the crop calendar / climate dataset.
//
// Dates in the source carry no year; the loader stamps them with the
// configured calendar year. Numeric fields that were empty or unparseable
// are NaN so that they never satisfy a range comparison.
type CropRecord struct {
	// Row is the index of the record in the loaded frame. Exports use it to
	// reproduce the original columns.
	Row int

	Crop     string
	Location string

	PlantStart   time.Time
	PlantEnd     time.Time
	HarvestStart time.Time
	HarvestEnd   time.Time

	TempMin   float64 // °C, monthly average
	TempMax   float64
	PrecipMin float64 // mm/month
	PrecipMax float64

	HarvestedArea float64 // km^2
	TotalDays     float64
	PlantMedian   float64 // day of year

	PrecipAtPlanting float64
	TempAtPlanting   float64
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate rejects NaN ends and inverted ranges. Infinite ends are allowed
// and mean unbounded.
func (r Range) Validate(name string) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("%s range must be numeric", name)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s_min must not be greater than %s_max", name, name)
	}
	return nil
}

// Clamp narrows other into r. A zero-width or inverted result collapses to
// the nearest bound.
func (r Range) Clamp(other Range) Range {
	out := Range{Min: math.Max(r.Min, other.Min), Max: math.Min(r.Max, other.Max)}
	if out.Min > out.Max {
		out.Max = out.Min
	}
	return out
}

// CropAverage is the mean growing period of one crop.
type CropAverage struct {
	Crop      string  `json:"Crop"`
	TotalDays float64 `json:"tot.days"`
}

// CropArea is the summed harvested area of one crop.
type CropArea struct {
	Crop          string  `json:"crop"`
	HarvestedArea float64 `json:"harvested_area"`
}
