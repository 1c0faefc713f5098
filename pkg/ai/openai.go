package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "judge",
		Subsystem: "ai",
		Name:      "feedback_duration_seconds",
		Help:      "Duration of AI feedback requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Subsystem: "ai",
		Name:      "feedback_failures_total",
		Help:      "Number of AI feedback failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI feedback generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements Generator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a new feedback generator using the provided
// configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 400
	}

	tracer := otel.Tracer("github.com/noah-isme/judge-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Generate sends the summary statistics to OpenAI and returns the feedback
// prose.
func (g *OpenAIGenerator) Generate(parent context.Context, input FeedbackInput) (Feedback, error) {
	ctx, span := g.tracer.Start(parent, "openai.feedback", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: feedbackSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildFeedbackPrompt(input),
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(g.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Feedback{}, fmt.Errorf("openai feedback: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Feedback{}, err
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		err := fmt.Errorf("empty feedback returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		return Feedback{}, err
	}

	return Feedback{
		Text: text,
		Raw: map[string]interface{}{
			"usage": resp.Usage,
		},
	}, nil
}

func feedbackSystemPrompt() string {
	return "You are a senior engineer reviewing a coding interview submission. Given the aggregate judging results, provide s" +
		"pecific, actionable feedback for improvement in a few short paragraphs. Do not restate the numbers back verbatim."
}

func buildFeedbackPrompt(input FeedbackInput) string {
	builder := strings.Builder{}
	builder.WriteString("Code analysis for: ")
	builder.WriteString(input.ProblemStatement)
	builder.WriteString("\nLanguage: ")
	builder.WriteString(input.Language)
	builder.WriteString("\n\nResults:\n")
	fmt.Fprintf(&builder, "- Correctness: %.1f%% (%d/%d tests passed)\n",
		input.CorrectnessScore, input.PassedTests, input.TotalTests)
	fmt.Fprintf(&builder, "- Complexity: %s (score %d/100)\n", input.TimeComplexity, input.ComplexityScore)
	fmt.Fprintf(&builder, "- Style: %s compliance (score %d/100)\n", input.StyleCompliance, input.StyleScore)
	fmt.Fprintf(&builder, "- Security: %s risk (score %d/100)\n", input.SecurityRiskLevel, input.SecurityScore)
	builder.WriteString("\nProvide specific, actionable feedback for improvement.")
	return builder.String()
}
