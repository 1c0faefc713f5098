package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-go-api/internal/analysis"
	"github.com/noah-isme/judge-go-api/internal/dto"
	"github.com/noah-isme/judge-go-api/internal/models"
	"github.com/noah-isme/judge-go-api/internal/repository"
	"github.com/noah-isme/judge-go-api/pkg/ai"
	"github.com/noah-isme/judge-go-api/pkg/judge"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Subsystem: "service",
		Name:      "submissions_total",
		Help:      "Number of judged submissions by language and final verdict",
	}, []string{"language", "verdict"})

	reportCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Subsystem: "service",
		Name:      "report_cache_hits_total",
		Help:      "Number of judge requests served from the report cache",
	}, []string{"language"})
)

// ErrSubmissionNotFound indicates the stored submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionCompletedSubject is the event subject published after judging.
const SubmissionCompletedSubject = "judge.submission.completed"

const passThreshold = 70

// Score weights: correctness dominates, the static analyses refine.
const (
	weightCorrectness = 0.4
	weightComplexity  = 0.25
	weightStyle       = 0.2
	weightSecurity    = 0.15
)

// Engine runs a submission through the execution pipeline.
type Engine interface {
	Judge(ctx context.Context, sub judge.Submission) (judge.Report, error)
}

// JudgeService exposes the judging operations behind the HTTP API.
type JudgeService interface {
	Judge(ctx context.Context, payload dto.JudgeRequest) (dto.JudgeResponse, error)
	GetSubmission(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	ListSubmissions(ctx context.Context, query dto.SubmissionQuery) (dto.SubmissionListResponse, error)
	Languages() []dto.LanguageResponse
}

// JudgeServiceConfig carries the service-level knobs.
type JudgeServiceConfig struct {
	CacheTTL time.Duration
}

type judgeService struct {
	engine      Engine
	submissions repository.SubmissionRepository
	cache       *redis.Client
	events      *nats.Conn
	feedback    ai.Generator
	validator   *validator.Validate
	logger      zerolog.Logger
	config      JudgeServiceConfig
}

// NewJudgeService constructs the judging service. The repository, cache,
// event bus, and feedback generator are all optional; a nil value disables
// that concern.
func NewJudgeService(engine Engine, submissions repository.SubmissionRepository, cache *redis.Client, events *nats.Conn, feedback ai.Generator, validate *validator.Validate, logger zerolog.Logger, cfg JudgeServiceConfig) JudgeService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}

	return &judgeService{
		engine:      engine,
		submissions: submissions,
		cache:       cache,
		events:      events,
		feedback:    feedback,
		validator:   validate,
		logger:      logger.With().Str("component", "judge_service").Logger(),
		config:      cfg,
	}
}

func (s *judgeService) Judge(ctx context.Context, payload dto.JudgeRequest) (dto.JudgeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JudgeResponse{}, err
	}

	digest := requestDigest(payload)
	if cached, ok := s.cachedResponse(ctx, digest); ok {
		reportCacheHits.WithLabelValues(strings.ToLower(payload.Language)).Inc()
		return cached, nil
	}

	report, err := s.engine.Judge(ctx, payload.ToSubmission())
	if err != nil {
		return dto.JudgeResponse{}, err
	}

	complexity := analysis.AnalyzeComplexity(payload.Code)
	style := analysis.AnalyzeStyle(payload.Code)
	security := analysis.AnalyzeSecurity(payload.Code)

	overall := int(report.CorrectnessScore*weightCorrectness +
		float64(complexity.Score)*weightComplexity +
		float64(style.Score)*weightStyle +
		float64(security.Score)*weightSecurity)

	response := dto.JudgeResponse{
		OverallScore:    overall,
		Grade:           gradeFor(overall),
		PassStatus:      passStatus(overall),
		Execution:       dto.NewExecutionResultsResponse(report),
		Complexity:      dto.NewComplexityResponse(complexity),
		Style:           dto.NewStyleResponse(style),
		Security:        dto.NewSecurityResponse(security),
		AIFeedback:      s.generateFeedback(ctx, payload, report, complexity, style, security),
		Recommendations: recommendations(report, complexity, style, security),
		Summary:         summary(report, complexity, style, security),
	}

	submissionsTotal.WithLabelValues(strings.ToLower(payload.Language), string(report.FinalVerdict)).Inc()

	if id, err := s.persist(ctx, payload, report, response, digest); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist submission")
	} else {
		response.SubmissionID = id
	}

	s.storeResponse(ctx, digest, response)
	s.publishCompleted(response, payload.Language)

	return response, nil
}

func (s *judgeService) GetSubmission(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	if s.submissions == nil {
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission, true), nil
}

func (s *judgeService) ListSubmissions(ctx context.Context, query dto.SubmissionQuery) (dto.SubmissionListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.SubmissionListResponse{}, err
	}

	if s.submissions == nil {
		return dto.SubmissionListResponse{Items: []dto.SubmissionResponse{}}, nil
	}

	limit := query.Limit
	if limit == 0 {
		limit = 20
	}

	submissions, total, err := s.submissions.List(ctx, repository.SubmissionFilter{
		Language: query.Language,
		Status:   query.Status,
		Verdict:  query.Verdict,
		Limit:    limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return dto.SubmissionListResponse{}, err
	}

	return dto.NewSubmissionListResponse(submissions, total), nil
}

func (s *judgeService) Languages() []dto.LanguageResponse {
	profiles := judge.Languages()
	out := make([]dto.LanguageResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, dto.NewLanguageResponse(profile))
	}
	return out
}

// requestDigest fingerprints the (language, code, test set) triple. Two
// identical requests always map to the same digest.
func requestDigest(payload dto.JudgeRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", strings.ToLower(strings.TrimSpace(payload.Language)), payload.Code)
	for _, tc := range payload.TestCases {
		fmt.Fprintf(h, "%s\x1f%s\x1f%d\x1f%d\x1f%t\x1f%s\x00", tc.Input, tc.ExpectedOutput, tc.TimeLimitMs, tc.MemoryMB, tc.Hidden, tc.Difficulty)
	}
	if payload.Constraints != nil {
		fmt.Fprintf(h, "c:%d:%d", payload.Constraints.TimeLimitMs, payload.Constraints.MemoryMB)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cacheKey(digest string) string {
	return "judge:report:" + digest
}

func (s *judgeService) cachedResponse(ctx context.Context, digest string) (dto.JudgeResponse, bool) {
	if s.cache == nil {
		return dto.JudgeResponse{}, false
	}

	raw, err := s.cache.Get(ctx, cacheKey(digest)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("report cache read failed")
		}
		return dto.JudgeResponse{}, false
	}

	var response dto.JudgeResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		s.logger.Warn().Err(err).Msg("report cache entry corrupt")
		return dto.JudgeResponse{}, false
	}

	response.Cached = true
	return response, true
}

func (s *judgeService) storeResponse(ctx context.Context, digest string, response dto.JudgeResponse) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal report for cache")
		return
	}

	if err := s.cache.Set(ctx, cacheKey(digest), raw, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("report cache write failed")
	}
}

func (s *judgeService) persist(ctx context.Context, payload dto.JudgeRequest, report judge.Report, response dto.JudgeResponse, digest string) (uint, error) {
	if s.submissions == nil {
		return 0, nil
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return 0, fmt.Errorf("marshal report: %w", err)
	}

	var reportMap map[string]interface{}
	if err := json.Unmarshal(raw, &reportMap); err != nil {
		return 0, fmt.Errorf("rebuild report map: %w", err)
	}

	submission := models.Submission{
		ProblemStatement: payload.ProblemStatement,
		Language:         strings.ToLower(strings.TrimSpace(payload.Language)),
		Source:           payload.Code,
		Status:           models.SubmissionStatusCompleted,
		FinalVerdict:     string(report.FinalVerdict),
		OverallScore:     response.OverallScore,
		Grade:            response.Grade,
		Passed:           response.PassStatus == "PASS",
		CorrectnessScore: report.CorrectnessScore,
		PassedTests:      report.PassedCount,
		TotalTests:       report.TotalCount,
		Digest:           digest,
		Report:           datatypes.JSONMap(reportMap),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return 0, err
	}

	return submission.ID, nil
}

func (s *judgeService) publishCompleted(response dto.JudgeResponse, language string) {
	if s.events == nil {
		return
	}

	event := map[string]interface{}{
		"submission_id": response.SubmissionID,
		"language":      strings.ToLower(language),
		"final_verdict": response.Execution.FinalVerdict,
		"overall_score": response.OverallScore,
		"grade":         response.Grade,
	}

	raw, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal completion event")
		return
	}

	if err := s.events.Publish(SubmissionCompletedSubject, raw); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish completion event")
	}
}

func (s *judgeService) generateFeedback(ctx context.Context, payload dto.JudgeRequest, report judge.Report, complexity analysis.ComplexityReport, style analysis.StyleReport, security analysis.SecurityReport) string {
	input := ai.FeedbackInput{
		ProblemStatement:  payload.ProblemStatement,
		Language:          payload.Language,
		CorrectnessScore:  report.CorrectnessScore,
		PassedTests:       report.PassedCount,
		TotalTests:        report.TotalCount,
		TimeComplexity:    complexity.TimeComplexity,
		ComplexityScore:   complexity.Score,
		StyleCompliance:   style.Compliance,
		StyleScore:        style.Score,
		SecurityRiskLevel: security.RiskLevel,
		SecurityScore:     security.Score,
	}

	if s.feedback != nil {
		feedback, err := s.feedback.Generate(ctx, input)
		if err == nil {
			return feedback.Text
		}
		s.logger.Warn().Err(err).Msg("ai feedback failed, using fallback")
	}

	return fallbackFeedback(input)
}

// fallbackFeedback composes deterministic advice from the summary statistics
// when no AI generator is configured or the call fails.
func fallbackFeedback(input ai.FeedbackInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Passed %d of %d test cases (%.1f%% correctness).", input.PassedTests, input.TotalTests, input.CorrectnessScore)

	if input.PassedTests < input.TotalTests {
		b.WriteString(" Review the failing cases and check edge conditions before resubmitting.")
	}
	if input.ComplexityScore < 80 {
		fmt.Fprintf(&b, " The solution looks %s; consider a more efficient approach.", input.TimeComplexity)
	}
	if input.StyleScore < 80 {
		b.WriteString(" Readability could improve: add documentation and follow naming conventions.")
	}
	if input.SecurityScore < 80 {
		fmt.Fprintf(&b, " Security review flagged %s risk constructs; remove dynamic execution and hardcoded secrets.", input.SecurityRiskLevel)
	}
	if input.PassedTests == input.TotalTests && input.ComplexityScore >= 80 && input.StyleScore >= 80 && input.SecurityScore >= 80 {
		b.WriteString(" Solid submission across correctness, efficiency, style, and security.")
	}

	return b.String()
}

func recommendations(report judge.Report, complexity analysis.ComplexityReport, style analysis.StyleReport, security analysis.SecurityReport) []string {
	var recs []string

	if failed := report.TotalCount - report.PassedCount; failed > 0 {
		recs = append(recs, fmt.Sprintf("Fix failing tests (%d failed)", failed))
	}
	if complexity.Score < 80 {
		recs = append(recs, fmt.Sprintf("Optimize %s complexity", complexity.TimeComplexity))
	}
	if style.Score < 80 {
		recs = append(recs, "Improve code documentation and style")
	}
	if security.Score < 80 {
		recs = append(recs, fmt.Sprintf("Address %s security risks", security.RiskLevel))
	}

	return recs
}

func summary(report judge.Report, complexity analysis.ComplexityReport, style analysis.StyleReport, security analysis.SecurityReport) dto.JudgeSummaryResponse {
	var strengths, areas []string

	if report.CorrectnessScore > 90 {
		strengths = append(strengths, "Excellent correctness")
	}
	if complexity.Score > 90 {
		strengths = append(strengths, "Optimal complexity")
	}
	if style.Score > 90 {
		strengths = append(strengths, "Clean code style")
	}
	if security.Score > 90 {
		strengths = append(strengths, "Secure implementation")
	}

	if report.CorrectnessScore < 70 {
		areas = append(areas, "Test coverage")
	}
	if complexity.Score < 70 {
		areas = append(areas, "Algorithm efficiency")
	}
	if style.Score < 70 {
		areas = append(areas, "Code quality")
	}
	if security.Score < 70 {
		areas = append(areas, "Security practices")
	}

	return dto.JudgeSummaryResponse{Strengths: strengths, AreasForImprovement: areas}
}

func gradeFor(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 80:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	default:
		return "D"
	}
}

func passStatus(score int) string {
	if score >= passThreshold {
		return "PASS"
	}
	return "FAIL"
}
