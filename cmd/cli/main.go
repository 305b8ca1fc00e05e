package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"field-dash/internal/app"
	"field-dash/internal/config"
	"field-dash/internal/dashboard"
	"field-dash/internal/data"
	"field-dash/internal/model"
	"field-dash/internal/observability"
	"field-dash/internal/render"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "field-dash",
		Short:         "Crop and stock dashboards from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", os.Getenv("DASH_CONFIG"), "dashboard YAML config (DASH_CONFIG)")

	rootCmd.AddCommand(
		newCropCmd(),
		newStockCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newCropCmd() *cobra.Command {
	var (
		dataPath             string
		year                 int
		plantFrom, plantTo   string
		tempMin, tempMax     float64
		precipMin, precipMax float64
		locations, crops     []string
		outDir               string
		xlsx, charts         bool
	)

	cmd := &cobra.Command{
		Use:   "crop",
		Short: "Filter the crop dataset and write the dashboard downloads",
		Long: `Run the crop filter pipeline and write plant_averages.csv,
plant_data_filtered.csv and plant_data.csv (the range-filtered dataset).

Example: field-dash crop --data All_data_with_climate.csv --temp-min 5 --location Kansas --out results --charts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dataPath != "" {
				cfg.Crop.DataFile = dataPath
			}
			if cmd.Flags().Changed("year") {
				cfg.Crop.CalendarYear = year
			}
			dash, err := app.NewCropDashboard(cfg.Crop, nil)
			if err != nil {
				return err
			}

			f := dashboard.CropFilter{Locations: locations, Crops: crops}
			if f.PlantFrom, err = parseOptionalDate(plantFrom); err != nil {
				return fmt.Errorf("--plant-from: %w", err)
			}
			if f.PlantTo, err = parseOptionalDate(plantTo); err != nil {
				return fmt.Errorf("--plant-to: %w", err)
			}
			if f.Temp, err = flagRange(cmd, "temp", tempMin, tempMax); err != nil {
				return err
			}
			if f.Precip, err = flagRange(cmd, "precip", precipMin, precipMax); err != nil {
				return err
			}

			view := dash.Apply(f)
			printCropView(os.Stdout, view)
			return writeCropOutputs(dash.Dataset(), view, outDir, xlsx, charts)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "crop CSV (overrides crop.data_file)")
	cmd.Flags().IntVar(&year, "year", 2004, "calendar year stamped onto M/D dates")
	cmd.Flags().StringVar(&plantFrom, "plant-from", "", "earliest planting start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&plantTo, "plant-to", "", "latest planting start date, YYYY-MM-DD")
	cmd.Flags().Float64Var(&tempMin, "temp-min", 0, "lower temperature bound, degrees C")
	cmd.Flags().Float64Var(&tempMax, "temp-max", 0, "upper temperature bound, degrees C")
	cmd.Flags().Float64Var(&precipMin, "precip-min", 0, "lower precipitation bound, mm/month")
	cmd.Flags().Float64Var(&precipMax, "precip-max", 0, "upper precipitation bound, mm/month")
	cmd.Flags().StringSliceVar(&locations, "location", nil, "locations to keep (repeatable)")
	cmd.Flags().StringSliceVar(&crops, "crop", nil, "crops to keep (repeatable)")
	cmd.Flags().StringVar(&outDir, "out", "results", "output directory")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write .xlsx workbooks")
	cmd.Flags().BoolVar(&charts, "charts", false, "also write PNG charts")
	return cmd
}

func newStockCmd() *cobra.Command {
	var (
		start, end string
		dataDir    string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "stock [tickers...]",
		Short: "Fetch closing prices and write a chart, CSV and summary",
		Long: `Fetch daily history for each ticker in [start, end) and write
closes.csv and chart.png. With --data, history is read from JSON snapshots
saved by fetch-history instead of the network.

Example: field-dash stock AAPL MSFT --start 2018-01-01 --end 2019-01-01 --out results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Stock.Provider = "snapshot"
				cfg.Stock.SnapshotDir = dataDir
			}
			logger := observability.NewLogger(os.Getenv("LOG_LEVEL"), "text")
			provider, closeProvider, err := app.NewProvider(cfg.Stock, app.ProviderOptions{}, logger, nil)
			if err != nil {
				return err
			}
			defer closeProvider()

			clock := clockwork.NewRealClock()
			dash, err := app.NewStockDashboard(cfg.Stock, provider, clock, logger)
			if err != nil {
				return err
			}
			defaults := dash.Defaults()
			tickers := args
			if len(tickers) == 0 {
				tickers = defaults.Tickers
			}
			if start == "" {
				start = defaults.Start
			}
			if end == "" {
				end = defaults.End
			}

			res, err := dash.Graph(cmd.Context(), dashboard.GraphRequest{Tickers: tickers, Start: start, End: end})
			if err != nil {
				return err
			}
			printRanking(os.Stdout, res)
			return writeStockOutputs(res, outDir)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start date, YYYY-MM-DD (default from config)")
	cmd.Flags().StringVar(&end, "end", "", "end date, exclusive, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&dataDir, "data", "", "directory of JSON history snapshots")
	cmd.Flags().StringVar(&outDir, "out", "results", "output directory")
	return cmd
}

func flagRange(cmd *cobra.Command, name string, lo, hi float64) (*model.Range, error) {
	minSet, maxSet := cmd.Flags().Changed(name+"-min"), cmd.Flags().Changed(name+"-max")
	if !minSet && !maxSet {
		return nil, nil
	}
	r := model.Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if minSet {
		r.Min = lo
	}
	if maxSet {
		r.Max = hi
	}
	if err := r.Validate(name); err != nil {
		return nil, fmt.Errorf("--%s-min/--%s-max: %w", name, name, err)
	}
	return &r, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func printCropView(w io.Writer, v *dashboard.CropView) {
	fmt.Fprintf(w, "planting %s .. %s\n", v.PlantFrom.Format("2006-01-02"), v.PlantTo.Format("2006-01-02"))
	fmt.Fprintf(w, "temperature bounds %g..%g applied %g..%g\n", v.TempBounds.Min, v.TempBounds.Max, v.TempRange.Min, v.TempRange.Max)
	fmt.Fprintf(w, "precipitation bounds %g..%g applied %g..%g\n", v.PrecipBounds.Min, v.PrecipBounds.Max, v.PrecipRange.Min, v.PrecipRange.Max)
	fmt.Fprintf(w, "rows: %d range-filtered, %d selected\n\n", len(v.RangeFiltered), len(v.Filtered))
	fmt.Fprintf(w, "%-20s %-10s %-14s\n", "crop", "tot.days", "harvested.area")
	area := map[string]float64{}
	for _, a := range v.AreaByCrop {
		area[a.Crop] = a.HarvestedArea
	}
	for _, a := range v.Averages {
		fmt.Fprintf(w, "%-20s %-10g %-14g\n", a.Crop, a.TotalDays, area[a.Crop])
	}
}

func writeCropOutputs(ds *data.CropDataset, v *dashboard.CropView, outDir string, xlsx, charts bool) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	filtered, original := dashboard.Rows(v.Filtered), dashboard.Rows(v.RangeFiltered)
	tables := []struct {
		name string
		t    data.Table
		csv  func(io.Writer) error
	}{
		{"plant_averages", data.AveragesTable(v.Averages), nil},
		{"plant_data_filtered", data.RecordsTable(ds, filtered), func(w io.Writer) error { return data.WriteRecordsCSV(w, ds, filtered) }},
		{"plant_data", data.RecordsTable(ds, original), func(w io.Writer) error { return data.WriteRecordsCSV(w, ds, original) }},
	}
	for _, tb := range tables {
		writeCSV := tb.csv
		if writeCSV == nil {
			writeCSV = func(w io.Writer) error { return data.WriteTableCSV(w, tb.t) }
		}
		if err := writeFile(filepath.Join(outDir, tb.name+".csv"), writeCSV); err != nil {
			return err
		}
		if xlsx {
			if err := writeFile(filepath.Join(outDir, tb.name+".xlsx"), func(w io.Writer) error {
				return data.WriteTableXLSX(w, tb.name, tb.t)
			}); err != nil {
				return err
			}
		}
	}
	if !charts {
		return nil
	}

	pngs := map[string]func(io.Writer) error{
		"area.png":   func(w io.Writer) error { return render.AreaPie(w, v.AreaByCrop) },
		"days.png":   func(w io.Writer) error { return render.DaysBar(w, v.Averages) },
		"precip.png": func(w io.Writer) error { return render.PrecipScatter(w, dashboard.PrecipPoints(v.Filtered)) },
		"temp.png":   func(w io.Writer) error { return render.TempScatter(w, dashboard.TempPoints(v.Filtered)) },
	}
	for name, draw := range pngs {
		err := writeFile(filepath.Join(outDir, name), draw)
		if errors.Is(err, render.ErrNoData) {
			fmt.Printf("skipped %s: no data\n", name)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printRanking(w io.Writer, res *dashboard.GraphResult) {
	fmt.Fprintf(w, "%s\n\n", res.Figure.Layout.Title)
	fmt.Fprintf(w, "%-4s %-8s %-6s %-18s %-10s %-10s %-10s %-10s\n",
		"rank", "symbol", "days", "min/max", "mean", "return", "vol", "drawdown")
	for _, r := range res.Ranking {
		fmt.Fprintf(w, "%-4d %-8s %-6d %-18s %-10.2f %-10s %-10s %-10s\n",
			r.Rank, r.Symbol, r.Count,
			fmt.Sprintf("%.2f/%.2f", r.MinClose, r.MaxClose),
			r.MeanClose,
			fmt.Sprintf("%.2f%%", r.TotalReturn*100),
			fmt.Sprintf("%.2f%%", r.StdDevReturn*100),
			fmt.Sprintf("%.2f%%", r.MaxDrawdown*100),
		)
	}
}

func writeStockOutputs(res *dashboard.GraphResult, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(outDir, "closes.csv"), func(w io.Writer) error {
		return data.WriteTableCSV(w, data.HistoryTable(res.Histories))
	}); err != nil {
		return err
	}
	err := writeFile(filepath.Join(outDir, "chart.png"), func(w io.Writer) error {
		return render.Figure(w, res.Figure)
	})
	if errors.Is(err, render.ErrNoData) {
		fmt.Println("skipped chart.png: no data")
		return nil
	}
	return err
}

// writeFile renders into memory first so a failed render leaves no file.
func writeFile(path string, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
