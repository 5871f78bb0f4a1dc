package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Query route
	apiRoutes.POST("/query", routes.QueryHandler)

	// Graph routes
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.GET("/graph/stats", routes.GetGraphStatsHandler)
	apiRoutes.GET("/graph/entities/:name", routes.GetEntityHandler)
	apiRoutes.GET("/graph/entities/:name/products", routes.GetEntityProductsHandler)
	apiRoutes.GET("/graph/search", routes.SearchEntitiesHandler)
	apiRoutes.GET("/graph/types/:type", routes.GetEntitiesByTypeHandler)

	// Knowledge base routes
	apiRoutes.POST("/ingest/products", routes.IngestProductsHandler)
	apiRoutes.DELETE("/knowledge", routes.ClearKnowledgeHandler)

	// Evaluation routes
	apiRoutes.POST("/evaluation/run", routes.StartEvaluationHandler)
	apiRoutes.GET("/evaluation/progress", routes.EvaluationProgressHandler)
	apiRoutes.GET("/evaluation/results", routes.EvaluationResultsHandler)
	apiRoutes.GET("/evaluation/benchmark", routes.GetBenchmarkHandler)
	apiRoutes.POST("/evaluation/single", routes.SingleEvaluationHandler)
}
