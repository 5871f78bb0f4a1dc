package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/pkg/logger"
)

// ClearKnowledgeHandler wipes the graph and the vector index together so
// the two stores never drift apart.
func ClearKnowledgeHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Graph.Clear()
		return nil
	})
	g.Go(func() error {
		return app.Vectors.Clear(gctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to clear knowledge base", "err", err)
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Knowledge base cleared"})
}
