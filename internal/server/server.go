package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"

	mid "github.com/shopgraph/backend/internal/server/middleware"
	"github.com/shopgraph/backend/internal/util"
	"github.com/shopgraph/backend/pkg/ai"
	"github.com/shopgraph/backend/pkg/ai/openai"
	"github.com/shopgraph/backend/pkg/eval"
	"github.com/shopgraph/backend/pkg/graph"
	"github.com/shopgraph/backend/pkg/logger"
	"github.com/shopgraph/backend/pkg/retriever"
	"github.com/shopgraph/backend/pkg/store"
	"github.com/shopgraph/backend/pkg/store/memory"
	pgxstore "github.com/shopgraph/backend/pkg/store/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient := newAIClient()
	vectors := newVectorIndex(ctx, aiClient)

	graphStore := graph.NewStore()
	hybridRetriever := retriever.New(graphStore, vectors)

	var judge eval.Judge = eval.HeuristicJudge{}
	var checker eval.HallucinationChecker
	if util.GetEnvBool("EVAL_LLM_JUDGE", true) {
		judge = eval.NewLLMJudge(aiClient)
		checker = eval.NewLLMHallucinationChecker(aiClient)
	}
	harness := eval.NewHarness(eval.NewHarnessParams{
		Retriever: hybridRetriever,
		Client:    aiClient,
		Graph:     graphStore,
		Engine:    eval.NewEngine(judge, checker),
		TopK:      int(util.GetEnvNumeric("RETRIEVAL_TOP_K", 5)),
	})

	app := &mid.App{
		Graph:        graphStore,
		Vectors:      vectors,
		AiClient:     aiClient,
		Retriever:    hybridRetriever,
		Harness:      harness,
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("Request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func newAIClient() ai.Client {
	return openai.NewClient(openai.NewClientParams{
		ChatModel:      util.GetEnvString("AI_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel: util.GetEnvString("AI_EMBED_MODEL", "text-embedding-3-small"),

		ChatURL:      util.GetEnv("AI_CHAT_URL"),
		ChatKey:      util.GetEnv("AI_CHAT_KEY"),
		EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
		EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
	})
}

// newVectorIndex picks the chunk store: Postgres with pgvector when
// DATABASE_URL is configured, an in-process index otherwise.
func newVectorIndex(ctx context.Context, aiClient ai.Client) store.VectorIndex {
	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL == "" || util.GetEnvString("VECTOR_ADAPTER", "pgx") == "memory" {
		logger.Info("Using in-memory vector index")
		return memory.NewIndex(aiClient)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Failed to parse database URL", "err", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}

	index, err := pgxstore.NewIndex(pgxstore.NewIndexParams{
		Conn:          conn,
		Embedder:      aiClient,
		DatabaseURL:   databaseURL,
		MigrationsDir: util.GetEnvString("MIGRATIONS_DIR", "migrations"),
	})
	if err != nil {
		logger.Fatal("Failed to initialize vector index", "err", err)
	}
	return index
}
