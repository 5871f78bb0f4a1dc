package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/pkg/ai"
	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/eval"
	"github.com/shopgraph/backend/pkg/graph"
	"github.com/shopgraph/backend/pkg/retriever"
	"github.com/shopgraph/backend/pkg/store"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

type stubAIClient struct{}

func (stubAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "canned answer", nil
}

func (stubAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return common.ErrExternalService
}

func (stubAIClient) GenerateAnswer(ctx context.Context, question string, items []common.ContextItem) (ai.Answer, error) {
	return ai.Answer{Text: "canned answer", Sources: []common.Source{}}, nil
}

func (stubAIClient) GenerateEmbedding(ctx context.Context, input string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type emptyIndex struct{}

func (emptyIndex) Search(ctx context.Context, query string, topK int) ([]store.ScoredChunk, error) {
	return []store.ScoredChunk{}, nil
}
func (emptyIndex) Insert(ctx context.Context, chunks []store.Chunk) error { return nil }
func (emptyIndex) Clear(ctx context.Context) error                        { return nil }
func (emptyIndex) Count(ctx context.Context) (int64, error)               { return 0, nil }

func newTestApp(t *testing.T) *middleware.App {
	t.Helper()
	g := graph.NewStore()
	brandID, err := g.UpsertEntity(graph.TypeBrand, "Acme", nil)
	if err != nil {
		t.Fatalf("UpsertEntity returned error: %v", err)
	}
	productID, err := g.UpsertEntity(graph.TypeProduct, "Acme Phone", &graph.ProductProps{Price: 299})
	if err != nil {
		t.Fatalf("UpsertEntity returned error: %v", err)
	}
	if err := g.UpsertRelationship(productID, brandID, graph.RelMadeBy); err != nil {
		t.Fatalf("UpsertRelationship returned error: %v", err)
	}

	client := stubAIClient{}
	r := retriever.New(g, emptyIndex{})
	harness := eval.NewHarness(eval.NewHarnessParams{
		Retriever: r,
		Client:    client,
		Graph:     g,
		Engine:    eval.NewEngine(eval.HeuristicJudge{}, nil),
	})
	return &middleware.App{
		Graph:     g,
		Vectors:   emptyIndex{},
		AiClient:  client,
		Retriever: r,
		Harness:   harness,
	}
}

func newTestContext(t *testing.T, app *middleware.App, method, target, body string) (*middleware.AppContext, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return &middleware.AppContext{Context: e.NewContext(req, rec), App: app}, rec
}

func TestQueryHandler(t *testing.T) {
	app := newTestApp(t)
	c, rec := newTestContext(t, app, http.MethodPost, "/api/query",
		`{"question": "What does Acme make?", "mode": "graph_only"}`)

	if err := QueryHandler(c); err != nil {
		t.Fatalf("QueryHandler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Answer        string   `json:"answer"`
		ModeUsed      string   `json:"mode_used"`
		GraphEntities []string `json:"graph_entities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Answer != "canned answer" || resp.ModeUsed != "graph_only" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.GraphEntities) == 0 {
		t.Error("expected matched graph entities")
	}
}

func TestQueryHandlerValidation(t *testing.T) {
	app := newTestApp(t)

	c, rec := newTestContext(t, app, http.MethodPost, "/api/query", `{"mode": "hybrid"}`)
	if err := QueryHandler(c); err != nil {
		t.Fatalf("QueryHandler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing question, got %d", rec.Code)
	}

	c, rec = newTestContext(t, app, http.MethodPost, "/api/query",
		`{"question": "hi", "mode": "keyword"}`)
	if err := QueryHandler(c); err != nil {
		t.Fatalf("QueryHandler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown mode, got %d", rec.Code)
	}
}

func TestGetEntityHandlerNotFound(t *testing.T) {
	app := newTestApp(t)
	c, rec := newTestContext(t, app, http.MethodGet, "/api/graph/entities/Ghost", "")
	c.SetParamNames("name")
	c.SetParamValues("Ghost")

	if err := GetEntityHandler(c); err != nil {
		t.Fatalf("GetEntityHandler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown entity, got %d", rec.Code)
	}
}

func TestGetGraphHandlerRejectsBadMaxNodes(t *testing.T) {
	app := newTestApp(t)
	c, rec := newTestContext(t, app, http.MethodGet, "/api/graph?max_nodes=lots", "")

	if err := GetGraphHandler(c); err != nil {
		t.Fatalf("GetGraphHandler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric max_nodes, got %d", rec.Code)
	}
}

func TestStartEvaluationConflictMapsTo409(t *testing.T) {
	app := newTestApp(t)

	first, firstRec := newTestContext(t, app, http.MethodPost, "/api/evaluation/run",
		`{"modes": ["hybrid"]}`)
	if err := StartEvaluationHandler(first); err != nil {
		t.Fatalf("StartEvaluationHandler returned error: %v", err)
	}
	if firstRec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", firstRec.Code, firstRec.Body.String())
	}

	second, secondRec := newTestContext(t, app, http.MethodPost, "/api/evaluation/run",
		`{"modes": ["hybrid"]}`)
	if err := StartEvaluationHandler(second); err != nil {
		t.Fatalf("StartEvaluationHandler returned error: %v", err)
	}
	// The first job may already have finished on fast machines; only a 409
	// or a second 202 are acceptable.
	if secondRec.Code != http.StatusConflict && secondRec.Code != http.StatusAccepted {
		t.Errorf("expected 409 or 202, got %d", secondRec.Code)
	}
}

func TestClearKnowledgeHandler(t *testing.T) {
	app := newTestApp(t)
	c, rec := newTestContext(t, app, http.MethodDelete, "/api/knowledge", "")

	if err := ClearKnowledgeHandler(c); err != nil {
		t.Fatalf("ClearKnowledgeHandler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stats := app.Graph.Stats(); stats.TotalEntities != 0 {
		t.Errorf("expected empty graph after clear, got %d entities", stats.TotalEntities)
	}
}

func TestIngestProductsHandler(t *testing.T) {
	app := newTestApp(t)
	c, rec := newTestContext(t, app, http.MethodPost, "/api/ingest/products",
		`{"products": [{"name": "Acme Watch", "brand": "Acme", "category": "Wearables", "price": 1999}]}`)

	if err := IngestProductsHandler(c); err != nil {
		t.Fatalf("IngestProductsHandler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := app.Graph.Get("Acme Watch"); err != nil {
		t.Errorf("ingested product missing from graph: %v", err)
	}
}
