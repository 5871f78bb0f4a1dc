package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopgraph/backend/internal/metrics"
	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/logger"
	"github.com/shopgraph/backend/pkg/retriever"
)

// QueryHandler answers a product question with the requested retrieval
// mode.
func QueryHandler(c echo.Context) error {
	type queryBody struct {
		Question string `json:"question" validate:"required"`
		Mode     string `json:"mode"`
		TopK     int    `json:"top_k"`
	}

	type queryResponse struct {
		Answer        string          `json:"answer"`
		Sources       []common.Source `json:"sources"`
		ModeUsed      retriever.Mode  `json:"mode_used"`
		GraphEntities []string        `json:"graph_entities"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	mode, err := retriever.ParseMode(data.Mode)
	if err != nil {
		return jsonError(c, err)
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	start := time.Now()

	retrieved, err := app.Retriever.Retrieve(ctx, data.Question, mode, data.TopK)
	if err != nil {
		logger.Error("Retrieval failed", "mode", mode, "err", err)
		return jsonError(c, err)
	}

	answer, err := app.AiClient.GenerateAnswer(ctx, data.Question, retrieved.Items)
	if err != nil {
		logger.Error("Answer generation failed", "mode", mode, "err", err)
		return jsonError(c, err)
	}

	metrics.QueriesTotal.WithLabelValues(string(mode)).Inc()
	metrics.QueryDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

	entities := retrieved.EntityNames
	if entities == nil {
		entities = []string{}
	}
	return c.JSON(http.StatusOK, queryResponse{
		Answer:        answer.Text,
		Sources:       answer.Sources,
		ModeUsed:      mode,
		GraphEntities: entities,
	})
}
