package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/models"
	"github.com/noah-isme/gema-learnpath-api/internal/repository"
)

// ErrEmptyInput indicates a text field is empty after sanitisation.
var ErrEmptyInput = errors.New("input must contain text")

// LessonService generates lesson material, quizzes, grading and tutor
// answers for the days of a stored plan.
type LessonService interface {
	Content(ctx context.Context, userID uint, planID string, day int, req dto.SubtopicContentRequest) (dto.LessonContentResponse, error)
	Quiz(ctx context.Context, userID uint, planID string, day int, req dto.QuizCreateRequest) (dto.QuizQuestionSet, error)
	Grade(ctx context.Context, userID uint, planID string, day int, req dto.GradeAnswerRequest) (dto.QuizAttemptResponse, error)
	Attempts(ctx context.Context, userID uint, planID string, limit int) ([]dto.QuizAttemptResponse, error)
	AskTutor(ctx context.Context, userID uint, planID string, req dto.TutorQuestionRequest) (dto.TutorExchangeResponse, error)
	TutorHistory(ctx context.Context, userID uint, planID string, limit int) ([]dto.TutorExchangeResponse, error)
}

type lessonService struct {
	plans     repository.LearningPlanRepository
	lessons   repository.LessonRepository
	profiles  ProfileService
	generator GenerationService
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewLessonService constructs the lesson service.
func NewLessonService(
	plans repository.LearningPlanRepository,
	lessons repository.LessonRepository,
	profiles ProfileService,
	generator GenerationService,
	validate *validator.Validate,
	logger zerolog.Logger,
) LessonService {
	return &lessonService{
		plans:     plans,
		lessons:   lessons,
		profiles:  profiles,
		generator: generator,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "lesson_service").Logger(),
	}
}

func (s *lessonService) Content(ctx context.Context, userID uint, planID string, day int, req dto.SubtopicContentRequest) (dto.LessonContentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LessonContentResponse{}, err
	}

	plan, lessonDay, err := s.loadDay(ctx, userID, planID, day)
	if err != nil {
		return dto.LessonContentResponse{}, err
	}
	subtopic := sanitizeText(s.sanitizer, req.Subtopic)
	if subtopic == "" {
		return dto.LessonContentResponse{}, ErrEmptyInput
	}

	response := dto.LessonContentResponse{PlanID: plan.PublicID, Day: day, Subtopic: subtopic}

	if !req.Refresh {
		stored, err := s.lessons.FindContent(ctx, plan.ID, day, subtopic)
		switch {
		case err == nil:
			response.Content = toDetailedContent(stored)
			response.Cached = true
			return response, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return dto.LessonContentResponse{}, err
		}
	}

	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		return dto.LessonContentResponse{}, fmt.Errorf("load learner profile: %w", err)
	}

	content := s.generator.GetDetailedSubtopicContent(ctx, dto.SubtopicRequest{
		Topic:    plan.Topic,
		DayTitle: lessonDay.Title,
		Subtopic: subtopic,
		Level:    plan.Level,
		Profile:  profile,
	})

	record := models.LessonContent{
		PlanID:       plan.ID,
		Day:          day,
		Subtopic:     subtopic,
		Content:      content.Content,
		KeyPoints:    encodeJSONList(content.KeyPoints),
		Examples:     encodeJSONList(content.Examples),
		Applications: encodeJSONList(content.PracticalApplications),
	}
	if err := s.lessons.UpsertContent(ctx, &record); err != nil {
		return dto.LessonContentResponse{}, fmt.Errorf("save lesson content: %w", err)
	}

	response.Content = content
	return response, nil
}

func (s *lessonService) Quiz(ctx context.Context, userID uint, planID string, day int, req dto.QuizCreateRequest) (dto.QuizQuestionSet, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuizQuestionSet{}, err
	}

	plan, _, err := s.loadDay(ctx, userID, planID, day)
	if err != nil {
		return dto.QuizQuestionSet{}, err
	}
	subtopic := sanitizeText(s.sanitizer, req.Subtopic)

	lesson, err := s.storedLesson(ctx, plan.ID, day, subtopic)
	if err != nil {
		return dto.QuizQuestionSet{}, err
	}
	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		return dto.QuizQuestionSet{}, fmt.Errorf("load learner profile: %w", err)
	}

	return s.generator.GenerateQuizQuestions(ctx, dto.QuizRequest{
		Topic:    plan.Topic,
		Subtopic: subtopic,
		Content:  lesson.Content,
		Count:    req.Count,
		Level:    plan.Level,
		Profile:  profile,
	}), nil
}

func (s *lessonService) Grade(ctx context.Context, userID uint, planID string, day int, req dto.GradeAnswerRequest) (dto.QuizAttemptResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuizAttemptResponse{}, err
	}

	plan, _, err := s.loadDay(ctx, userID, planID, day)
	if err != nil {
		return dto.QuizAttemptResponse{}, err
	}

	question := sanitizeText(s.sanitizer, req.Question)
	answer := sanitizeText(s.sanitizer, req.Answer)
	if question == "" || answer == "" {
		return dto.QuizAttemptResponse{}, ErrEmptyInput
	}
	subtopic := sanitizeText(s.sanitizer, req.Subtopic)

	lesson, err := s.storedLesson(ctx, plan.ID, day, subtopic)
	if err != nil {
		return dto.QuizAttemptResponse{}, err
	}
	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		return dto.QuizAttemptResponse{}, fmt.Errorf("load learner profile: %w", err)
	}

	grading := s.generator.GradeTheoryAnswer(ctx, dto.GradeRequest{
		Question:      question,
		Answer:        answer,
		KeyPoints:     decodeJSONList(lesson.KeyPoints),
		LessonContent: lesson.Content,
		Profile:       profile,
	})

	attempt := models.QuizAttempt{
		PlanID:   plan.ID,
		UserID:   userID,
		Day:      day,
		Subtopic: subtopic,
		Question: question,
		Answer:   answer,
		Score:    grading.Score,
		Feedback: grading.Feedback,
		Details: datatypes.JSONMap{
			"strengths":    grading.Strengths,
			"improvements": grading.Improvements,
		},
	}
	if err := s.lessons.CreateAttempt(ctx, &attempt); err != nil {
		return dto.QuizAttemptResponse{}, fmt.Errorf("save quiz attempt: %w", err)
	}

	s.logger.Info().
		Uint("user_id", userID).
		Str("plan_id", plan.PublicID).
		Int("day", day).
		Float64("score", grading.Score).
		Msg("theory answer graded")

	return toQuizAttemptResponse(plan.PublicID, attempt), nil
}

func (s *lessonService) Attempts(ctx context.Context, userID uint, planID string, limit int) ([]dto.QuizAttemptResponse, error) {
	plan, err := loadOwnedPlan(ctx, s.plans, userID, planID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.lessons.ListAttempts(ctx, plan.ID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.QuizAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		items = append(items, toQuizAttemptResponse(plan.PublicID, attempt))
	}
	return items, nil
}

func (s *lessonService) AskTutor(ctx context.Context, userID uint, planID string, req dto.TutorQuestionRequest) (dto.TutorExchangeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TutorExchangeResponse{}, err
	}

	plan, err := loadOwnedPlan(ctx, s.plans, userID, planID)
	if err != nil {
		return dto.TutorExchangeResponse{}, err
	}

	question := sanitizeText(s.sanitizer, req.Question)
	if question == "" {
		return dto.TutorExchangeResponse{}, ErrEmptyInput
	}

	var lessonContext strings.Builder
	if req.Day > 0 {
		day, err := planDay(plan, req.Day)
		if err != nil {
			return dto.TutorExchangeResponse{}, err
		}
		fmt.Fprintf(&lessonContext, "%s\nSubtopics: %s\n", day.Title, strings.Join(day.Subtopics, ", "))

		lesson, err := s.storedLesson(ctx, plan.ID, req.Day, sanitizeText(s.sanitizer, req.Subtopic))
		if err != nil {
			return dto.TutorExchangeResponse{}, err
		}
		if lesson.Content != "" {
			lessonContext.WriteString("\n" + lesson.Content)
		}
	}

	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		return dto.TutorExchangeResponse{}, fmt.Errorf("load learner profile: %w", err)
	}

	answer := s.generator.AskTutorQuestion(ctx, dto.TutorRequest{
		Question:      question,
		Topic:         plan.Topic,
		LessonContext: lessonContext.String(),
		Profile:       profile,
	})

	exchange := models.TutorExchange{
		PlanID:     plan.ID,
		UserID:     userID,
		Day:        req.Day,
		Question:   question,
		Answer:     answer.Answer,
		FollowUps:  encodeJSONList(answer.FollowUpQuestions),
		References: encodeJSONList(answer.References),
	}
	if err := s.lessons.CreateTutorExchange(ctx, &exchange); err != nil {
		return dto.TutorExchangeResponse{}, fmt.Errorf("save tutor exchange: %w", err)
	}

	return toTutorExchangeResponse(plan.PublicID, exchange), nil
}

func (s *lessonService) TutorHistory(ctx context.Context, userID uint, planID string, limit int) ([]dto.TutorExchangeResponse, error) {
	plan, err := loadOwnedPlan(ctx, s.plans, userID, planID)
	if err != nil {
		return nil, err
	}

	exchanges, err := s.lessons.ListTutorExchanges(ctx, plan.ID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TutorExchangeResponse, 0, len(exchanges))
	for _, exchange := range exchanges {
		items = append(items, toTutorExchangeResponse(plan.PublicID, exchange))
	}
	return items, nil
}

func (s *lessonService) loadDay(ctx context.Context, userID uint, planID string, day int) (models.LearningPlan, models.PlanDay, error) {
	plan, err := loadOwnedPlan(ctx, s.plans, userID, planID)
	if err != nil {
		return models.LearningPlan{}, models.PlanDay{}, err
	}
	pd, err := planDay(plan, day)
	if err != nil {
		return models.LearningPlan{}, models.PlanDay{}, err
	}
	return plan, pd, nil
}

// storedLesson returns previously generated content for a subtopic, or an
// empty record when there is none.
func (s *lessonService) storedLesson(ctx context.Context, planID uint, day int, subtopic string) (models.LessonContent, error) {
	if subtopic == "" {
		return models.LessonContent{}, nil
	}
	lesson, err := s.lessons.FindContent(ctx, planID, day, subtopic)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LessonContent{}, nil
		}
		return models.LessonContent{}, err
	}
	return lesson, nil
}

func toDetailedContent(record models.LessonContent) dto.DetailedContent {
	return dto.DetailedContent{
		Content:               record.Content,
		KeyPoints:             decodeJSONList(record.KeyPoints),
		Examples:              decodeJSONList(record.Examples),
		PracticalApplications: decodeJSONList(record.Applications),
	}
}

func toQuizAttemptResponse(planID string, attempt models.QuizAttempt) dto.QuizAttemptResponse {
	return dto.QuizAttemptResponse{
		ID:       attempt.ID,
		PlanID:   planID,
		Day:      attempt.Day,
		Question: attempt.Question,
		Answer:   attempt.Answer,
		Grading: dto.GradingResult{
			Score:        attempt.Score,
			Feedback:     attempt.Feedback,
			Strengths:    anyToStrings(attempt.Details["strengths"]),
			Improvements: anyToStrings(attempt.Details["improvements"]),
		},
		CreatedAt: attempt.CreatedAt,
	}
}

func toTutorExchangeResponse(planID string, exchange models.TutorExchange) dto.TutorExchangeResponse {
	return dto.TutorExchangeResponse{
		ID:       exchange.ID,
		PlanID:   planID,
		Day:      exchange.Day,
		Question: exchange.Question,
		Answer: dto.TutorAnswer{
			Answer:            exchange.Answer,
			FollowUpQuestions: decodeJSONList(exchange.FollowUps),
			References:        decodeJSONList(exchange.References),
		},
		CreatedAt: exchange.CreatedAt,
	}
}

func encodeJSONList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func decodeJSONList(raw datatypes.JSON) []string {
	items := []string{}
	if len(raw) == 0 {
		return items
	}
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []string{}
	}
	return items
}

// anyToStrings reads string lists stored in a JSON map, before or after a
// database round trip.
func anyToStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if text, ok := item.(string); ok && text != "" {
				items = append(items, text)
			}
		}
		return items
	default:
		return []string{}
	}
}
