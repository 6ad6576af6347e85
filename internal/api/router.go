package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"go-insights-engine/internal/api/handler"
	"go-insights-engine/internal/pipeline"
	"go-insights-engine/pkg/router"

	_ "go-insights-engine/docs"
)

// RegisterRoutes wires the insights endpoints onto r. metricsHandler is
// mounted at /metrics when non-nil.
func RegisterRoutes(r *router.Router, h *handler.Handler, metricsHandler http.Handler) {
	r.GET("/api/data", h.GetAllData)
	r.GET("/api/data/filter", h.GetFilteredData)
	r.GET("/api/data/filters", h.GetFilterOptions)
	r.GET("/api/data/stats", h.GetStats)
	r.GET("/api/data/intensity-by-year", h.Shape(pipeline.ShapeIntensityByYear))
	r.GET("/api/data/topics-distribution", h.Shape(pipeline.ShapeTopicsDistribution))
	r.GET("/api/data/likelihood-by-region", h.Shape(pipeline.ShapeLikelihoodByRegion))
	r.GET("/api/data/relevance-by-sector", h.Shape(pipeline.ShapeRelevanceBySector))
	r.GET("/api/data/country-distribution", h.Shape(pipeline.ShapeCountryDistribution))
	r.GET("/api/data/query/*", h.GetShape)
	r.GET("/healthz", h.Health)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	r.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
