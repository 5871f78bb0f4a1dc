package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/pkg/graph"
)

// GetEntityHandler looks up one entity by name or id, with its
// relationships.
func GetEntityHandler(c echo.Context) error {
	type entityResponse struct {
		Entity  graph.Entity    `json:"entity"`
		Related []graph.Related `json:"related"`
	}

	app := c.(*middleware.AppContext).App

	entity, err := app.Graph.Get(c.Param("name"))
	if err != nil {
		return jsonError(c, err)
	}
	related, err := app.Graph.Related(entity.ID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, entityResponse{Entity: entity, Related: related})
}

// GetEntityProductsHandler lists the products connected to a brand,
// category, price range or feature entity.
func GetEntityProductsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	products, err := app.Graph.ProductsFor(c.Param("name"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}

// SearchEntitiesHandler matches entities by name substring with an optional
// type filter.
func SearchEntitiesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q must not be empty"})
	}
	typeFilter := graph.EntityType(c.QueryParam("type"))

	return c.JSON(http.StatusOK, map[string]any{
		"results": app.Graph.Search(query, typeFilter),
	})
}

func GetEntitiesByTypeHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	entities := app.Graph.EntitiesByType(graph.EntityType(c.Param("type")))
	return c.JSON(http.StatusOK, map[string]any{"entities": entities})
}
