package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopgraph/backend/internal/metrics"
	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/pkg/eval"
	"github.com/shopgraph/backend/pkg/retriever"
)

// StartEvaluationHandler launches a benchmark job. Returns 409 while a job
// is already running.
func StartEvaluationHandler(c echo.Context) error {
	type startBody struct {
		Modes      []string `json:"modes"`
		Category   string   `json:"category"`
		Difficulty string   `json:"difficulty"`
		Limit      int      `json:"limit"`
	}

	data := new(startBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	modes := make([]retriever.Mode, 0, len(data.Modes))
	for _, m := range data.Modes {
		modes = append(modes, retriever.Mode(m))
	}

	app := c.(*middleware.AppContext).App
	info, err := app.Harness.Start(modes, eval.Category(data.Category), eval.Difficulty(data.Difficulty), data.Limit)
	if err != nil {
		return jsonError(c, err)
	}

	metrics.EvaluationsTotal.Inc()
	return c.JSON(http.StatusAccepted, info)
}

// SingleEvaluationHandler evaluates one ad-hoc question synchronously
// across the requested modes.
func SingleEvaluationHandler(c echo.Context) error {
	type singleBody struct {
		Question    string   `json:"question" validate:"required"`
		GroundTruth string   `json:"ground_truth"`
		Modes       []string `json:"modes"`
	}

	data := new(singleBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	modes := make([]retriever.Mode, 0, len(data.Modes))
	for _, m := range data.Modes {
		modes = append(modes, retriever.Mode(m))
	}

	app := c.(*middleware.AppContext).App
	records, err := app.Harness.RunSingle(c.Request().Context(), data.Question, data.GroundTruth, modes)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"results": records})
}
