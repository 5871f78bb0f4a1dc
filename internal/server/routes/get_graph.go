package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shopgraph/backend/internal/server/middleware"
)

const defaultSubgraphNodes = 50

// GetGraphHandler returns a bounded subgraph for visualization.
func GetGraphHandler(c echo.Context) error {
	maxNodes := defaultSubgraphNodes
	if raw := c.QueryParam("max_nodes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_nodes must be a non-negative integer"})
		}
		maxNodes = parsed
	}

	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Graph.ExtractSubgraph(maxNodes))
}

func GetGraphStatsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Graph.Stats())
}
