package models

import (
	"field-dash/internal/dashboard"
	"field-dash/internal/model"
)

// CropViewResponse is the crop filter result.
type CropViewResponse struct {
	PlantFrom string `json:"plant_from"`
	PlantTo   string `json:"plant_to"`

	TempBounds   model.Range `json:"temp_bounds"`
	TempRange    model.Range `json:"temp_range"`
	PrecipBounds model.Range `json:"precip_bounds"`
	PrecipRange  model.Range `json:"precip_range"`

	LocationOptions []string `json:"location_options"`
	CropOptions     []string `json:"crop_options"`

	Averages   []CropAverage    `json:"averages"`
	AreaByCrop []model.CropArea `json:"area_by_crop"`

	PrecipPoints []dashboard.ScatterPoint `json:"precip_points"`
	TempPoints   []dashboard.ScatterPoint `json:"temp_points"`

	Counts CropCounts `json:"counts"`
}

// CropAverage is model.CropAverage with a missing mean encoded as null.
type CropAverage struct {
	Crop      string   `json:"Crop"`
	TotalDays *float64 `json:"tot.days"`
}

type CropCounts struct {
	Total         int `json:"total"`
	RangeFiltered int `json:"range_filtered"`
	Filtered      int `json:"filtered"`
}

// SymbolsResponse lists ticker dropdown options.
type SymbolsResponse struct {
	Options []model.Option `json:"options"`
	Count   int            `json:"count"`
}

// RankResponse represents the response from ranking tickers
type RankResponse struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked ticker
type Ranking struct {
	Rank         int     `json:"rank"`
	Symbol       string  `json:"symbol"`
	Count        int     `json:"count"`
	SpreadP95P05 float64 `json:"spread_p95_p05"`
	MinClose     float64 `json:"min_close"`
	MaxClose     float64 `json:"max_close"`
	TotalReturn  float64 `json:"total_return"`
	Volatility   float64 `json:"volatility"`
	MaxDrawdown  float64 `json:"max_drawdown"`
}

// DatasetsResponse describes the loaded crop dataset and stock sources.
type DatasetsResponse struct {
	Crop  CropDatasetInfo  `json:"crop"`
	Stock StockDatasetInfo `json:"stock"`
}

type CropDatasetInfo struct {
	Rows         int      `json:"rows"`
	CalendarYear int      `json:"calendar_year"`
	Columns      []string `json:"columns"`
	Locations    []string `json:"locations"`
	Crops        []string `json:"crops"`
	PlantFrom    string   `json:"plant_from"`
	PlantTo      string   `json:"plant_to"`
}

type StockDatasetInfo struct {
	Provider  string `json:"provider"`
	Companies int    `json:"companies"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
