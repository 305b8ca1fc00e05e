package models

// CropViewQuery is the crop dashboard selection, shared by the page, the
// view endpoint, the chart endpoints and the downloads.
type CropViewQuery struct {
	PlantFrom string   `form:"plant_from"` // YYYY-MM-DD, default Jan 1
	PlantTo   string   `form:"plant_to"`   // YYYY-MM-DD, default Dec 31
	TempMin   *float64 `form:"temp_min"`
	TempMax   *float64 `form:"temp_max"`
	PrecipMin *float64 `form:"precip_min"`
	PrecipMax *float64 `form:"precip_max"`
	Locations []string `form:"location"`
	Crops     []string `form:"crop"`
}

// StockGraphRequest is the body of POST /api/v1/stock/graph.
type StockGraphRequest struct {
	Tickers []string `json:"tickers" binding:"required"`
	Start   string   `json:"start" binding:"required"` // leading YYYY-MM-DD is used
	End     string   `json:"end" binding:"required"`
}

// StockChartQuery selects the stock chart image. With no tickers the default
// figure is drawn.
type StockChartQuery struct {
	Tickers []string `form:"ticker"`
	Start   string   `form:"start"`
	End     string   `form:"end"`
}

// SymbolsQuery searches the company list.
type SymbolsQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit,omitempty"` // default: 50
}

// RankRequest represents a request to rank tickers by total return
type RankRequest struct {
	Tickers   string `form:"tickers" binding:"required"` // comma-separated
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	Limit     int    `form:"limit,omitempty"` // default: 10
}
