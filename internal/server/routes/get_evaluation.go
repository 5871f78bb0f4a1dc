package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/pkg/eval"
)

func EvaluationProgressHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Harness.Progress())
}

func EvaluationResultsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Harness.Results())
}

// GetBenchmarkHandler lists the benchmark questions and their composition.
func GetBenchmarkHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	questions := app.Harness.Benchmark()
	return c.JSON(http.StatusOK, map[string]any{
		"questions": questions,
		"stats":     eval.Statistics(questions),
	})
}
