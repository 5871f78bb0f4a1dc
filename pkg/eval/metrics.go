package eval

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopgraph/backend/internal/util"
	"github.com/shopgraph/backend/pkg/common"
	"github.com/shopgraph/backend/pkg/logger"
)

// Metrics scores one (question, mode) evaluation. Pointer fields are nil
// when the metric is undefined for the sample, so aggregation can exclude
// them instead of averaging in zeros.
type Metrics struct {
	RelevanceScore        float64  `json:"relevance_score"`
	AccuracyScore         *float64 `json:"accuracy_score"`
	KeywordCoverage       float64  `json:"keyword_coverage"`
	EntityCoverage        *float64 `json:"entity_coverage"`
	ResponseTimeMs        float64  `json:"response_time_ms"`
	SourceCount           int      `json:"source_count"`
	HallucinationDetected bool     `json:"hallucination_detected"`
	HallucinationDetails  string   `json:"hallucination_details,omitempty"`
}

// Sample is everything known about a single answered question.
type Sample struct {
	Question          string
	Answer            string
	GroundTruth       string
	ExpectedKeywords  []string
	ExpectedEntities  []string
	Sources           []common.Source
	ContextTexts      []string
	RetrievedEntities []string
	ElapsedMs         float64
}

// Engine computes metrics from samples. It is stateless apart from the
// judge and the optional hallucination checker; Compute never fails.
type Engine struct {
	judge   Judge
	checker HallucinationChecker
}

// NewEngine builds an engine. checker may be nil, in which case only the
// lexical hallucination heuristics run.
func NewEngine(judge Judge, checker HallucinationChecker) *Engine {
	return &Engine{judge: judge, checker: checker}
}

func (e *Engine) Compute(ctx context.Context, s Sample) Metrics {
	m := Metrics{
		KeywordCoverage: keywordCoverage(s),
		EntityCoverage:  entityCoverage(s),
		ResponseTimeMs:  s.ElapsedMs,
		SourceCount:     len(s.Sources),
	}

	judgment, err := e.judge.Score(ctx, s.Question, s.Answer, s.GroundTruth)
	if err != nil {
		judgment = Judgment{Relevance: 3}
		if s.GroundTruth != "" {
			fallback, _ := HeuristicJudge{}.Score(ctx, s.Question, s.Answer, s.GroundTruth)
			judgment.Accuracy = fallback.Accuracy
		}
	}
	m.RelevanceScore = sanitize(judgment.Relevance, 1, 5, 3)
	if s.GroundTruth != "" {
		accuracy := sanitize(judgment.Accuracy, 0, 1, 0)
		m.AccuracyScore = &accuracy
	}

	m.HallucinationDetected, m.HallucinationDetails = detectHallucination(s)
	// The model pass only runs when the heuristics found nothing; a check
	// failure leaves the heuristic result in place.
	if !m.HallucinationDetected && e.checker != nil && s.GroundTruth != "" {
		details, err := e.checker.Check(ctx, s.Question, s.Answer, s.GroundTruth)
		switch {
		case err != nil:
			logger.Warn("Hallucination check failed", "err", err)
		case details != "":
			m.HallucinationDetected = true
			m.HallucinationDetails = details
		}
	}
	return m
}

// keywordCoverage is the fraction of expected keywords present in the
// answer. Without an expected list it falls back to the question's salient
// tokens.
func keywordCoverage(s Sample) float64 {
	keywords := s.ExpectedKeywords
	if len(keywords) == 0 {
		keywords = util.SalientTokens(s.Question)
	}
	if len(keywords) == 0 {
		return 1
	}
	found := 0
	for _, kw := range keywords {
		if util.ContainsToken(s.Answer, kw) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}

// entityCoverage is the fraction of expected entities that the retriever
// actually surfaced. Undefined without an expectation.
func entityCoverage(s Sample) *float64 {
	if len(s.ExpectedEntities) == 0 {
		return nil
	}
	found := 0
	for _, expected := range s.ExpectedEntities {
		needle := strings.ToLower(expected)
		for _, name := range s.RetrievedEntities {
			if strings.Contains(strings.ToLower(name), needle) {
				found++
				break
			}
		}
	}
	coverage := float64(found) / float64(len(s.ExpectedEntities))
	return &coverage
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

var negativeMarkers = []string{"not found", "does not exist", "no product", "unavailable"}

// detectHallucination applies two heuristics: numeric claims in the answer
// that appear in neither the retrieved context nor the ground truth, and
// positive answers to questions whose ground truth marks the item as
// unavailable.
func detectHallucination(s Sample) (bool, string) {
	var indicators []string

	corpus := strings.ToLower(s.GroundTruth + " " + strings.Join(s.ContextTexts, " "))
	corpus = strings.ReplaceAll(corpus, ",", "")
	var untraceable []string
	for _, raw := range numberPattern.FindAllString(s.Answer, -1) {
		number := strings.ReplaceAll(raw, ",", "")
		// Single digits show up in prose too often to signal anything.
		if len(number) < 2 {
			continue
		}
		if !strings.Contains(corpus, number) {
			untraceable = append(untraceable, number)
		}
	}
	if len(untraceable) > 0 {
		indicators = append(indicators,
			fmt.Sprintf("numeric claims not traceable to any source: %s", strings.Join(untraceable, ", ")))
	}

	truthLower := strings.ToLower(s.GroundTruth)
	answerLower := strings.ToLower(s.Answer)
	truthNegative := false
	for _, marker := range negativeMarkers {
		if strings.Contains(truthLower, marker) {
			truthNegative = true
			break
		}
	}
	if truthNegative {
		answerNegative := strings.Contains(answerLower, "not") || strings.Contains(answerLower, "no ")
		for _, marker := range negativeMarkers {
			if strings.Contains(answerLower, marker) {
				answerNegative = true
				break
			}
		}
		if !answerNegative {
			indicators = append(indicators, "answer describes an item the ground truth marks as unavailable")
		}
	}

	return len(indicators) > 0, strings.Join(indicators, "; ")
}

// sanitize clamps v into [lo,hi] and replaces NaN with a neutral value.
func sanitize(v, lo, hi, neutral float64) float64 {
	if math.IsNaN(v) {
		return neutral
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
