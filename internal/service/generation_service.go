package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/observability"
	"github.com/noah-isme/gema-learnpath-api/pkg/ai"
	"github.com/noah-isme/gema-learnpath-api/pkg/llmjson"
)

// Fallback reasons recorded when a generation is answered locally.
const (
	fallbackNoClient  = "no_client"
	fallbackTransport = "transport"
	fallbackEmpty     = "empty"
	fallbackUnusable  = "unusable"
)

// GenerationService produces learning material with a language model. Every
// operation returns a fully populated result; failures of the model are
// answered with locally built content instead of errors.
type GenerationService interface {
	Enabled() bool
	GenerateLearningPlan(ctx context.Context, req dto.PlanRequest) dto.LearningPlan
	GetDetailedSubtopicContent(ctx context.Context, req dto.SubtopicRequest) dto.DetailedContent
	GenerateQuizQuestions(ctx context.Context, req dto.QuizRequest) dto.QuizQuestionSet
	GradeTheoryAnswer(ctx context.Context, req dto.GradeRequest) dto.GradingResult
	AskTutorQuestion(ctx context.Context, req dto.TutorRequest) dto.TutorAnswer
}

type generationService struct {
	client ai.Client
	model  string
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGenerationService constructs the generation service. A nil client
// disables model calls and every operation returns its local fallback.
func NewGenerationService(client ai.Client, model string, logger zerolog.Logger) GenerationService {
	return &generationService{
		client: client,
		model:  model,
		tracer: otel.Tracer("github.com/noah-isme/gema-learnpath-api/internal/service/generation"),
		logger: logger.With().Str("component", "generation_service").Logger(),
	}
}

// generation describes one kind of generated result.
type generation[T dto.GeneratedResult] struct {
	kind        dto.ResultKind
	prompt      string
	temperature float32
	maxTokens   int
	fields      llmjson.FieldSet
	repair      []llmjson.RepairOption
	usable      func(T) bool
	fallback    func() T
	lastResort  func(raw string, partial T) T
}

func (s *generationService) Enabled() bool {
	return s.client != nil
}

func (s *generationService) GenerateLearningPlan(ctx context.Context, req dto.PlanRequest) dto.LearningPlan {
	plan := runGeneration(ctx, s, generation[dto.LearningPlan]{
		kind:        dto.KindLearningPlan,
		prompt:      learningPlanPrompt(req),
		temperature: 0.7,
		maxTokens:   4000,
		fields: llmjson.FieldSet{
			{Name: "title", Kind: llmjson.FieldString},
			{Name: "overview", Kind: llmjson.FieldString},
		},
		repair: []llmjson.RepairOption{
			llmjson.WithPrimaryFields("overview"),
			llmjson.WithFreeTextFields("overview"),
		},
		usable:     func(p dto.LearningPlan) bool { return len(p.Days) > 0 },
		fallback:   func() dto.LearningPlan { return fallbackLearningPlan(req) },
		lastResort: func(raw string, partial dto.LearningPlan) dto.LearningPlan {
			return lastResortLearningPlan(raw, partial, req)
		},
	})

	if req.DurationDays > 0 && len(plan.Days) > req.DurationDays {
		plan.Days = plan.Days[:req.DurationDays]
	}
	if plan.Title == "" {
		plan.Title = "Learning plan: " + req.Topic
	}
	return plan
}

func (s *generationService) GetDetailedSubtopicContent(ctx context.Context, req dto.SubtopicRequest) dto.DetailedContent {
	return runGeneration(ctx, s, generation[dto.DetailedContent]{
		kind:        dto.KindDetailedContent,
		prompt:      subtopicContentPrompt(req),
		temperature: 0.7,
		maxTokens:   3000,
		fields: llmjson.FieldSet{
			{Name: "content", Kind: llmjson.FieldString},
			{Name: "keyPoints", Kind: llmjson.FieldArray},
			{Name: "examples", Kind: llmjson.FieldArray},
			{Name: "practicalApplications", Kind: llmjson.FieldArray},
		},
		usable: func(c dto.DetailedContent) bool {
			return c.Content != defaultContent || len(c.KeyPoints) > 0 || len(c.Examples) > 0 || len(c.PracticalApplications) > 0
		},
		fallback:   func() dto.DetailedContent { return fallbackDetailedContent(req) },
		lastResort: func(raw string, _ dto.DetailedContent) dto.DetailedContent { return lastResortDetailedContent(raw, req) },
	})
}

func (s *generationService) GenerateQuizQuestions(ctx context.Context, req dto.QuizRequest) dto.QuizQuestionSet {
	req.Count = quizCount(req.Count)
	set := runGeneration(ctx, s, generation[dto.QuizQuestionSet]{
		kind:        dto.KindQuizQuestions,
		prompt:      quizPrompt(req),
		temperature: 0.8,
		maxTokens:   2000,
		usable:      func(q dto.QuizQuestionSet) bool { return len(q.Questions) > 0 },
		fallback:    func() dto.QuizQuestionSet { return fallbackQuizQuestions(req) },
		lastResort:  func(raw string, _ dto.QuizQuestionSet) dto.QuizQuestionSet { return lastResortQuizQuestions(raw, req) },
	})

	if len(set.Questions) > req.Count {
		set.Questions = set.Questions[:req.Count]
	}
	return set
}

func (s *generationService) GradeTheoryAnswer(ctx context.Context, req dto.GradeRequest) dto.GradingResult {
	return runGeneration(ctx, s, generation[dto.GradingResult]{
		kind:        dto.KindGrading,
		prompt:      gradePrompt(req),
		temperature: 0.3,
		maxTokens:   1000,
		fields: llmjson.FieldSet{
			{Name: "feedback", Kind: llmjson.FieldString},
			{Name: "strengths", Kind: llmjson.FieldArray},
			{Name: "improvements", Kind: llmjson.FieldArray},
		},
		repair: []llmjson.RepairOption{
			llmjson.WithPrimaryFields("feedback"),
			llmjson.WithFreeTextFields("feedback"),
		},
		usable: func(g dto.GradingResult) bool {
			return g.Feedback != defaultFeedback || g.Score > 0 || len(g.Strengths) > 0 || len(g.Improvements) > 0
		},
		fallback:   func() dto.GradingResult { return fallbackGrading(req) },
		lastResort: func(raw string, _ dto.GradingResult) dto.GradingResult { return lastResortGrading(raw, req) },
	})
}

func (s *generationService) AskTutorQuestion(ctx context.Context, req dto.TutorRequest) dto.TutorAnswer {
	return runGeneration(ctx, s, generation[dto.TutorAnswer]{
		kind:        dto.KindTutorAnswer,
		prompt:      tutorPrompt(req),
		temperature: 0.7,
		maxTokens:   1500,
		fields: llmjson.FieldSet{
			{Name: "answer", Kind: llmjson.FieldString},
			{Name: "followUpQuestions", Kind: llmjson.FieldArray},
			{Name: "references", Kind: llmjson.FieldArray},
		},
		repair: []llmjson.RepairOption{
			llmjson.WithPrimaryFields("answer"),
			llmjson.WithFreeTextFields("answer"),
		},
		usable:     func(a dto.TutorAnswer) bool { return a.Answer != defaultTutorAnswer },
		fallback:   func() dto.TutorAnswer { return fallbackTutorAnswer(req) },
		lastResort: func(raw string, _ dto.TutorAnswer) dto.TutorAnswer { return lastResortTutorAnswer(raw, req) },
	})
}

// runGeneration performs one model call and recovers a result from its text.
func runGeneration[T dto.GeneratedResult](ctx context.Context, s *generationService, g generation[T]) T {
	start := time.Now()
	defer func() {
		observability.GenerationLatency().WithLabelValues(string(g.kind)).Observe(time.Since(start).Seconds())
	}()

	ctx, span := s.tracer.Start(ctx, "generation."+string(g.kind), trace.WithAttributes(
		attribute.String("kind", string(g.kind)),
	))
	defer span.End()

	logger := s.logger.With().Str("kind", string(g.kind)).Logger()

	if s.client == nil {
		logger.Warn().Msg("ai client not configured, using local fallback")
		return useFallback(span, g, fallbackNoClient)
	}

	raw, err := s.client.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: g.prompt},
		},
		Model:       s.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		reason := fallbackTransport
		if errors.Is(err, ai.ErrEmptyCompletion) {
			reason = fallbackEmpty
		}
		logger.Warn().Err(err).Str("reason", reason).Msg("model call failed, using local fallback")
		return useFallback(span, g, reason)
	}

	normalized := llmjson.Normalize(raw)
	obj, source := llmjson.ParseOrExtract(llmjson.Repair(normalized, g.repair...), g.fields)
	if source == llmjson.SourceEmpty {
		if extracted := llmjson.Extract(normalized, g.fields); len(extracted) > 0 {
			obj, source = extracted, llmjson.SourceExtracted
		}
	}

	verdict, schemaErr := schemaVerdict(g.kind, obj, source)
	if schemaErr != nil {
		logger.Debug().Err(schemaErr).Msg("generated object does not match schema")
	}

	result, ok := Coerce(g.kind, obj).(T)
	if !ok || !g.usable(result) {
		logger.Warn().Str("source", string(source)).Int("raw_length", len(raw)).Msg("nothing usable recovered, using last resort")
		observability.GenerationFallbacks().WithLabelValues(string(g.kind), fallbackUnusable).Inc()
		span.SetAttributes(attribute.String("source", "last_resort"))
		return g.lastResort(raw, result)
	}

	observability.GenerationResults().WithLabelValues(string(g.kind), string(source), verdict).Inc()
	span.SetAttributes(attribute.String("source", string(source)), attribute.String("schema", verdict))
	logger.Debug().Str("source", string(source)).Str("schema", verdict).Msg("generation recovered")
	return result
}

func useFallback[T dto.GeneratedResult](span trace.Span, g generation[T], reason string) T {
	observability.GenerationFallbacks().WithLabelValues(string(g.kind), reason).Inc()
	span.SetAttributes(attribute.String("source", "fallback"), attribute.String("fallback_reason", reason))
	return g.fallback()
}
