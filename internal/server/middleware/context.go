package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/shopgraph/backend/pkg/ai"
	"github.com/shopgraph/backend/pkg/eval"
	"github.com/shopgraph/backend/pkg/graph"
	"github.com/shopgraph/backend/pkg/retriever"
	"github.com/shopgraph/backend/pkg/store"
)

// App bundles the shared service instances handlers work with.
type App struct {
	Graph        *graph.Store
	Vectors      store.VectorIndex
	AiClient     ai.Client
	Retriever    *retriever.Retriever
	Harness      *eval.Harness
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
