package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/shopgraph/backend/internal/metrics"
	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/internal/util"
	"github.com/shopgraph/backend/pkg/graph"
	"github.com/shopgraph/backend/pkg/logger"
	"github.com/shopgraph/backend/pkg/store"
)

// IngestProductsHandler builds graph entities from product records and
// embeds one chunk per product into the vector index. Embedding calls are
// bounded by AI_PARALLEL_REQ.
func IngestProductsHandler(c echo.Context) error {
	type ingestBody struct {
		Products []graph.ProductRecord `json:"products" validate:"required,min=1,dive"`
	}

	type ingestResponse struct {
		Message  string      `json:"message"`
		Products int         `json:"products"`
		Chunks   int         `json:"chunks"`
		Stats    graph.Stats `json:"graph_stats"`
	}

	data := new(ingestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if err := app.Graph.BuildFromProducts(data.Products); err != nil {
		return jsonError(c, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)))

	chunks := 0
	for _, p := range data.Products {
		if graph.NormalizeName(p.Name) == "" {
			continue
		}
		chunks++
		chunk := store.Chunk{
			Text:   productChunkText(p),
			Source: graph.EntityID(graph.TypeProduct, p.Name),
			Title:  p.Name,
		}
		g.Go(func() error {
			return app.Vectors.Insert(gctx, []store.Chunk{chunk})
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Chunk ingestion failed", "err", err)
		return jsonError(c, err)
	}

	metrics.IngestedProducts.Add(float64(len(data.Products)))
	return c.JSON(http.StatusOK, ingestResponse{
		Message:  "Ingestion completed",
		Products: len(data.Products),
		Chunks:   chunks,
		Stats:    app.Graph.Stats(),
	})
}

// productChunkText flattens a product record into the prose the embedding
// model sees.
func productChunkText(p graph.ProductRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", p.Name)
	if p.Brand != "" {
		fmt.Fprintf(&b, " by %s", p.Brand)
	}
	if p.Category != "" {
		fmt.Fprintf(&b, ", category %s", p.Category)
	}
	if p.Price > 0 {
		fmt.Fprintf(&b, ", priced at ₹%.0f", p.Price)
	}
	if p.Rating > 0 {
		fmt.Fprintf(&b, ", rated %.1f stars", p.Rating)
	}
	if p.ReviewsCount > 0 {
		fmt.Fprintf(&b, " across %d reviews", p.ReviewsCount)
	}
	b.WriteString(".")
	if p.Description != "" {
		fmt.Fprintf(&b, " %s", p.Description)
	}
	if len(p.Features) > 0 {
		fmt.Fprintf(&b, " Features: %s.", strings.Join(p.Features, ", "))
	}
	return b.String()
}
