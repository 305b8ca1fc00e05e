package api

import (
	"log/slog"
	"net/http"
	"strings"

	"field-dash/internal/api/handlers"
	"field-dash/internal/api/middleware"
	"field-dash/internal/dashboard"
	"field-dash/internal/observability"
	"field-dash/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Crop        *dashboard.CropDashboard
	Stock       *dashboard.StockDashboard
	Logger      *slog.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// StaticDir, when set, is served under /static.
	StaticDir string
	// MetricsHandler defaults to the default Prometheus registry.
	MetricsHandler http.Handler
}

// NewRouter wires middleware, pages and API routes.
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Logger, d.Metrics))
	router.Use(middleware.ErrorHandler(d.Logger))
	router.Use(middleware.CORS(d.CORSOrigins))
	router.SetHTMLTemplate(tmpl)

	cropHandler := handlers.NewCropHandler(d.Crop)
	stockHandler := handlers.NewStockHandler(d.Stock)
	pageHandler := handlers.NewPageHandler(d.Crop, d.Stock)
	rankHandler := handlers.NewRankHandler(d.Stock)
	datasetHandler := handlers.NewDatasetHandler(d.Crop, d.Stock)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	router.GET("/", pageHandler.Index)
	router.GET("/crop", pageHandler.Crop)
	router.GET("/stock", pageHandler.Stock)

	api := router.Group("/api/v1")
	{
		api.GET("/crop/view", cropHandler.View)
		api.GET("/crop/charts/:chart", cropHandler.Chart)
		api.GET("/crop/download/:table", cropHandler.Download)

		api.GET("/symbols", stockHandler.Symbols)
		api.GET("/stock/default", stockHandler.Defaults)
		api.POST("/stock/graph", stockHandler.Graph)
		api.GET("/stock/chart.png", stockHandler.Chart)
		api.GET("/stock/rank", rankHandler.RankTickers)

		api.GET("/datasets", datasetHandler.ListDatasets)
	}

	if d.StaticDir != "" {
		router.Static("/static", d.StaticDir)
	}

	notFound := middleware.NotFound()
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.Redirect(http.StatusFound, "/")
	})
	return router, nil
}
