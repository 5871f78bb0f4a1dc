package eval

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/shopgraph/backend/internal/util"
	"github.com/shopgraph/backend/pkg/ai"
	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/graph"
	"github.com/shopgraph/backend/pkg/logger"
	"github.com/shopgraph/backend/pkg/retriever"
)

// Status is the lifecycle of the current benchmark job as reported by
// Results.
type Status string

const (
	StatusRunning   Status = "running"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
	StatusNoResults Status = "no_results"
)

// Record is the outcome of one (question, mode) evaluation. A failed call
// keeps its slot with zeroed metrics and an error note so runs stay
// comparable.
type Record struct {
	QuestionID  string          `json:"question_id"`
	Question    string          `json:"question"`
	Mode        retriever.Mode  `json:"retrieval_mode"`
	Response    string          `json:"response"`
	GroundTruth string          `json:"ground_truth"`
	Sources     []common.Source `json:"sources"`
	Metrics
	GraphEntitiesFound int       `json:"graph_entities_found"`
	Error              string    `json:"error,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// Aggregate averages the metrics of one mode's successful records. Pointer
// fields stay nil when no record defined that metric.
type Aggregate struct {
	Count              int      `json:"count"`
	AvgRelevanceScore  float64  `json:"avg_relevance_score"`
	AvgAccuracyScore   *float64 `json:"avg_accuracy_score,omitempty"`
	AvgKeywordCoverage float64  `json:"avg_keyword_coverage"`
	AvgEntityCoverage  *float64 `json:"avg_entity_coverage,omitempty"`
	AvgResponseTimeMs  float64  `json:"avg_response_time_ms"`
	AvgSourceCount     float64  `json:"avg_source_count"`
	HallucinationRate  float64  `json:"hallucination_rate"`
}

type Progress struct {
	Running         bool    `json:"running"`
	Percentage      float64 `json:"percentage"`
	Completed       int     `json:"completed"`
	Total           int     `json:"total"`
	CurrentQuestion string  `json:"current_question"`
}

type Results struct {
	Status           Status                       `json:"status"`
	TotalEvaluations int                          `json:"total_evaluations"`
	Results          []Record                     `json:"results"`
	Aggregated       map[retriever.Mode]Aggregate `json:"aggregated"`
}

type StartInfo struct {
	JobID            string           `json:"job_id"`
	Questions        int              `json:"questions"`
	Modes            []retriever.Mode `json:"modes"`
	TotalEvaluations int              `json:"total_evaluations"`
}

// Harness runs the benchmark across retrieval modes as a single background
// job. At most one job runs at a time; all job state lives behind mu and
// external calls never happen under the lock.
type Harness struct {
	retriever   *retriever.Retriever
	client      ai.Client
	graph       *graph.Store
	engine      *Engine
	benchmark   []Question
	topK        int
	callTimeout time.Duration

	mu              sync.Mutex
	running         bool
	jobID           string
	total           int
	completed       int
	currentQuestion string
	records         []Record
	finished        bool
}

type NewHarnessParams struct {
	Retriever *retriever.Retriever
	Client    ai.Client
	Graph     *graph.Store
	Engine    *Engine
	Benchmark []Question
	TopK      int
}

func NewHarness(params NewHarnessParams) *Harness {
	benchmark := params.Benchmark
	if benchmark == nil {
		benchmark = DefaultBenchmark()
	}
	topK := params.TopK
	if topK <= 0 {
		topK = 5
	}
	timeout := time.Duration(util.GetEnvNumeric("EVAL_CALL_TIMEOUT_S", 60) * float64(time.Second))
	return &Harness{
		retriever:   params.Retriever,
		client:      params.Client,
		graph:       params.Graph,
		engine:      params.Engine,
		benchmark:   benchmark,
		topK:        topK,
		callTimeout: timeout,
	}
}

// Benchmark exposes the question set backing this harness.
func (h *Harness) Benchmark() []Question {
	return h.benchmark
}

func validateModes(modes []retriever.Mode) ([]retriever.Mode, error) {
	if len(modes) == 0 {
		return []retriever.Mode{retriever.ModeVectorOnly, retriever.ModeGraphOnly, retriever.ModeHybrid}, nil
	}
	for _, m := range modes {
		if _, err := retriever.ParseMode(string(m)); err != nil {
			return nil, err
		}
	}
	return modes, nil
}

// Start filters the benchmark and launches the job in the background. A
// second Start while a job is running returns ErrConflict and leaves the
// running job untouched.
func (h *Harness) Start(modes []retriever.Mode, category Category, difficulty Difficulty, limit int) (StartInfo, error) {
	modes, err := validateModes(modes)
	if err != nil {
		return StartInfo{}, err
	}
	questions, err := Filter(h.benchmark, category, difficulty, limit)
	if err != nil {
		return StartInfo{}, err
	}

	jobID, err := gonanoid.New()
	if err != nil {
		return StartInfo{}, fmt.Errorf("generating job id: %w", err)
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return StartInfo{}, fmt.Errorf("%w: an evaluation is already running", common.ErrConflict)
	}
	h.running = true
	h.jobID = jobID
	h.total = len(questions) * len(modes)
	h.completed = 0
	h.currentQuestion = ""
	h.records = nil
	h.mu.Unlock()

	logger.Info("Starting evaluation run",
		"jobID", jobID, "questions", len(questions), "modes", modes)
	go h.run(questions, modes)

	return StartInfo{
		JobID:            jobID,
		Questions:        len(questions),
		Modes:            modes,
		TotalEvaluations: len(questions) * len(modes),
	}, nil
}

func (h *Harness) run(questions []Question, modes []retriever.Mode) {
	ctx := context.Background()
	for _, q := range questions {
		for _, mode := range modes {
			h.mu.Lock()
			h.currentQuestion = q.Question
			h.mu.Unlock()

			record := h.evaluate(ctx, q, mode)

			h.mu.Lock()
			h.records = append(h.records, record)
			h.completed++
			h.mu.Unlock()
		}
	}

	h.mu.Lock()
	h.running = false
	h.finished = true
	h.currentQuestion = ""
	completed := h.completed
	h.mu.Unlock()
	logger.Info("Evaluation run finished", "evaluations", completed)
}

// evaluate drives the retrieve-generate-score path for one question and
// mode under the per-call timeout. Failures become error records instead of
// aborting the run.
func (h *Harness) evaluate(parent context.Context, q Question, mode retriever.Mode) Record {
	record := Record{
		QuestionID:  q.ID,
		Question:    q.Question,
		Mode:        mode,
		GroundTruth: q.GroundTruth,
		Timestamp:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(parent, h.callTimeout)
	defer cancel()

	start := time.Now()
	retrieved, err := h.retriever.Retrieve(ctx, q.Question, mode, h.topK)
	if err != nil {
		record.Error = fmt.Sprintf("retrieval failed: %v", err)
		logger.Warn("Evaluation call failed", "question", q.ID, "mode", mode, "err", err)
		return record
	}
	answer, err := h.client.GenerateAnswer(ctx, q.Question, retrieved.Items)
	if err != nil {
		record.Error = fmt.Sprintf("generation failed: %v", err)
		logger.Warn("Evaluation call failed", "question", q.ID, "mode", mode, "err", err)
		return record
	}
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	record.Response = answer.Text
	record.Sources = answer.Sources
	record.GraphEntitiesFound = len(retrieved.EntityNames)

	contextTexts := make([]string, 0, len(retrieved.Items))
	for _, item := range retrieved.Items {
		contextTexts = append(contextTexts, item.Text)
	}
	record.Metrics = h.engine.Compute(ctx, Sample{
		Question:          q.Question,
		Answer:            answer.Text,
		GroundTruth:       q.GroundTruth,
		ExpectedKeywords:  q.ExpectedKeywords,
		ExpectedEntities:  h.expectedEntities(q),
		Sources:           answer.Sources,
		ContextTexts:      contextTexts,
		RetrievedEntities: retrieved.EntityNames,
		ElapsedMs:         elapsed,
	})
	return record
}

// expectedEntities resolves the reference set for entity coverage: the
// question's own expectation when present, otherwise whatever the graph
// matches against the question text.
func (h *Harness) expectedEntities(q Question) []string {
	if len(q.ExpectedEntities) > 0 {
		return q.ExpectedEntities
	}
	if h.graph == nil {
		return nil
	}
	matched := h.graph.MatchEntities(q.Question, 5)
	names := make([]string, 0, len(matched))
	for _, e := range matched {
		names = append(names, e.Name)
	}
	return names
}

// Progress reports the live job state. Percentage only ever grows within a
// job and lands on exactly 100 when the job completes.
func (h *Harness) Progress() Progress {
	h.mu.Lock()
	defer h.mu.Unlock()

	percentage := 0.0
	if h.total > 0 {
		percentage = float64(h.completed) / float64(h.total) * 100
	}
	return Progress{
		Running:         h.running,
		Percentage:      percentage,
		Completed:       h.completed,
		Total:           h.total,
		CurrentQuestion: h.currentQuestion,
	}
}

// Results snapshots the records and per-mode aggregates, partial while the
// job is still running.
func (h *Harness) Results() Results {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := StatusNoResults
	switch {
	case h.running:
		status = StatusRunning
	case h.finished && len(h.records) > 0 && allFailed(h.records):
		status = StatusFailed
	case h.finished:
		status = StatusComplete
	}

	records := make([]Record, len(h.records))
	copy(records, h.records)

	return Results{
		Status:           status,
		TotalEvaluations: h.total,
		Results:          records,
		Aggregated:       aggregate(records),
	}
}

// RunSingle evaluates one ad-hoc question per mode synchronously, without
// touching the background job state.
func (h *Harness) RunSingle(ctx context.Context, question, groundTruth string, modes []retriever.Mode) (map[retriever.Mode]Record, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", common.ErrValidation)
	}
	modes, err := validateModes(modes)
	if err != nil {
		return nil, err
	}

	q := Question{ID: "adhoc", Question: question, GroundTruth: groundTruth}
	results := make(map[retriever.Mode]Record, len(modes))
	for _, mode := range modes {
		results[mode] = h.evaluate(ctx, q, mode)
	}
	return results, nil
}

func allFailed(records []Record) bool {
	for _, r := range records {
		if r.Error == "" {
			return false
		}
	}
	return true
}

// aggregate averages each mode's successful records. Modes without a single
// successful record are left out entirely rather than reported as zero.
func aggregate(records []Record) map[retriever.Mode]Aggregate {
	byMode := map[retriever.Mode][]Record{}
	for _, r := range records {
		if r.Error != "" {
			continue
		}
		byMode[r.Mode] = append(byMode[r.Mode], r)
	}

	aggregated := make(map[retriever.Mode]Aggregate, len(byMode))
	for mode, modeRecords := range byMode {
		n := float64(len(modeRecords))
		agg := Aggregate{Count: len(modeRecords)}

		var accuracySum float64
		var accuracyN int
		var entitySum float64
		var entityN int
		var flagged int
		for _, r := range modeRecords {
			agg.AvgRelevanceScore += r.RelevanceScore / n
			agg.AvgKeywordCoverage += r.KeywordCoverage / n
			agg.AvgResponseTimeMs += r.ResponseTimeMs / n
			agg.AvgSourceCount += float64(r.SourceCount) / n
			if r.AccuracyScore != nil {
				accuracySum += *r.AccuracyScore
				accuracyN++
			}
			if r.EntityCoverage != nil {
				entitySum += *r.EntityCoverage
				entityN++
			}
			if r.HallucinationDetected {
				flagged++
			}
		}
		if accuracyN > 0 {
			avg := accuracySum / float64(accuracyN)
			agg.AvgAccuracyScore = &avg
		}
		if entityN > 0 {
			avg := entitySum / float64(entityN)
			agg.AvgEntityCoverage = &avg
		}
		agg.HallucinationRate = float64(flagged) / n

		aggregated[mode] = agg
	}
	return aggregated
}
