package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/models"
	"github.com/noah-isme/gema-learnpath-api/internal/observability"
	"github.com/noah-isme/gema-learnpath-api/internal/repository"
)

var (
	// ErrPlanNotFound indicates the plan does not exist.
	ErrPlanNotFound = errors.New("learning plan not found")
	// ErrPlanForbidden indicates the plan belongs to another user.
	ErrPlanForbidden = errors.New("learning plan belongs to another user")
	// ErrDayOutOfRange indicates a day number outside the plan.
	ErrDayOutOfRange = errors.New("plan day out of range")
	// ErrPlanTooLong indicates the requested duration exceeds the configured maximum.
	ErrPlanTooLong = errors.New("plan duration exceeds the allowed maximum")
	// ErrInvalidTopic indicates the topic is empty after sanitisation.
	ErrInvalidTopic = errors.New("topic must contain text")
)

// LearningPlanService manages generated learning plans and their progress.
type LearningPlanService interface {
	Create(ctx context.Context, userID uint, req dto.PlanCreateRequest) (dto.PlanResponse, error)
	List(ctx context.Context, userID uint, req dto.PlanListRequest) (dto.PlanListResult, error)
	Get(ctx context.Context, userID uint, publicID string) (dto.PlanResponse, error)
	UpdateDayProgress(ctx context.Context, userID uint, publicID string, day int, req dto.PlanProgressRequest) (dto.PlanResponse, error)
	Delete(ctx context.Context, userID uint, publicID string) error
}

// LearningPlanConfig tunes plan generation and caching.
type LearningPlanConfig struct {
	MaxDays  int
	CacheTTL time.Duration
}

type learningPlanService struct {
	plans     repository.LearningPlanRepository
	profiles  ProfileService
	generator GenerationService
	events    PlanEventPublisher
	cache     *redis.Client
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	cfg       LearningPlanConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLearningPlanService constructs the learning plan service.
func NewLearningPlanService(
	plans repository.LearningPlanRepository,
	profiles ProfileService,
	generator GenerationService,
	events PlanEventPublisher,
	cache *redis.Client,
	validate *validator.Validate,
	cfg LearningPlanConfig,
	logger zerolog.Logger,
) LearningPlanService {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 30
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	return &learningPlanService{
		plans:     plans,
		profiles:  profiles,
		generator: generator,
		events:    events,
		cache:     cache,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		cfg:       cfg,
		logger:    logger.With().Str("component", "learning_plan_service").Logger(),
		now:       time.Now,
	}
}

func (s *learningPlanService) Create(ctx context.Context, userID uint, req dto.PlanCreateRequest) (dto.PlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PlanResponse{}, err
	}
	if req.DurationDays > s.cfg.MaxDays {
		return dto.PlanResponse{}, fmt.Errorf("%w (%d days)", ErrPlanTooLong, s.cfg.MaxDays)
	}

	topic := sanitizeText(s.sanitizer, req.Topic)
	if topic == "" {
		return dto.PlanResponse{}, ErrInvalidTopic
	}
	level := strings.ToLower(strings.TrimSpace(req.Level))
	if level == "" {
		level = "beginner"
	}
	dailyTime := sanitizeText(s.sanitizer, req.DailyTime)

	profile, err := s.profiles.Lookup(ctx, userID)
	if err != nil {
		return dto.PlanResponse{}, fmt.Errorf("load learner profile: %w", err)
	}

	generated := s.generator.GenerateLearningPlan(ctx, dto.PlanRequest{
		Topic:        topic,
		DurationDays: req.DurationDays,
		Level:        level,
		DailyTime:    dailyTime,
		Profile:      profile,
	})

	plan := models.LearningPlan{
		PublicID:     uuid.NewString(),
		UserID:       userID,
		Topic:        topic,
		Level:        level,
		DailyTime:    dailyTime,
		DurationDays: req.DurationDays,
		Title:        generated.Title,
		Overview:     generated.Overview,
		Days:         toModelDays(generated.Days),
	}
	if err := s.plans.Create(ctx, &plan); err != nil {
		return dto.PlanResponse{}, fmt.Errorf("save learning plan: %w", err)
	}

	s.publish(ctx, dto.PlanEvent{
		Type:   PlanEventGenerated,
		PlanID: plan.PublicID,
		UserID: userID,
		Topic:  plan.Topic,
	})
	s.invalidate(ctx, userID)

	s.logger.Info().
		Uint("user_id", userID).
		Str("plan_id", plan.PublicID).
		Int("days", len(plan.Days)).
		Msg("learning plan generated")

	return toPlanResponse(plan), nil
}

func (s *learningPlanService) List(ctx context.Context, userID uint, req dto.PlanListRequest) (dto.PlanListResult, error) {
	filter := repository.LearningPlanFilter{
		UserID:   userID,
		Search:   strings.TrimSpace(req.Search),
		Sort:     strings.ToLower(strings.TrimSpace(req.Sort)),
		Page:     normalizePage(req.Page),
		PageSize: clampPageSize(req.PageSize),
	}

	if cached, ok := s.fetchCache(ctx, filter); ok {
		cached.CacheHit = true
		observability.PlanListRequests().WithLabelValues("hit").Inc()
		return cached, nil
	}

	plans, total, err := s.plans.List(ctx, filter)
	if err != nil {
		observability.PlanListRequests().WithLabelValues("error").Inc()
		return dto.PlanListResult{}, err
	}

	items := make([]dto.PlanSummaryResponse, 0, len(plans))
	for _, plan := range plans {
		items = append(items, toPlanSummary(plan))
	}

	result := dto.PlanListResult{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: calculateTotalPages(total, filter.PageSize),
		},
	}

	s.writeCache(ctx, filter, result)
	observability.PlanListRequests().WithLabelValues("miss").Inc()
	return result, nil
}

func (s *learningPlanService) Get(ctx context.Context, userID uint, publicID string) (dto.PlanResponse, error) {
	plan, err := loadOwnedPlan(ctx, s.plans, userID, publicID)
	if err != nil {
		return dto.PlanResponse{}, err
	}
	return toPlanResponse(plan), nil
}

func (s *learningPlanService) UpdateDayProgress(ctx context.Context, userID uint, publicID string, day int, req dto.PlanProgressRequest) (dto.PlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PlanResponse{}, err
	}

	plan, err := loadOwnedPlan(ctx, s.plans, userID, publicID)
	if err != nil {
		return dto.PlanResponse{}, err
	}
	if _, err := planDay(plan, day); err != nil {
		return dto.PlanResponse{}, err
	}

	progress := models.PlanDayProgress{PlanID: plan.ID, Day: day, Completed: *req.Completed}
	if progress.Completed {
		completedAt := s.now().UTC()
		progress.CompletedAt = &completedAt
	}
	if err := s.plans.UpsertProgress(ctx, &progress); err != nil {
		return dto.PlanResponse{}, fmt.Errorf("save plan progress: %w", err)
	}

	s.publish(ctx, dto.PlanEvent{
		Type:      PlanEventProgress,
		PlanID:    plan.PublicID,
		UserID:    userID,
		Day:       day,
		Completed: progress.Completed,
	})
	s.invalidate(ctx, userID)

	updated, err := loadOwnedPlan(ctx, s.plans, userID, publicID)
	if err != nil {
		return dto.PlanResponse{}, err
	}
	return toPlanResponse(updated), nil
}

func (s *learningPlanService) Delete(ctx context.Context, userID uint, publicID string) error {
	plan, err := loadOwnedPlan(ctx, s.plans, userID, publicID)
	if err != nil {
		return err
	}

	if err := s.plans.Delete(ctx, plan.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	s.publish(ctx, dto.PlanEvent{Type: PlanEventDeleted, PlanID: plan.PublicID, UserID: userID})
	s.invalidate(ctx, userID)
	return nil
}

func (s *learningPlanService) publish(ctx context.Context, event dto.PlanEvent) {
	if s.events == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", event.Type).Str("plan_id", event.PlanID).Msg("failed to publish plan event")
	}
}

func (s *learningPlanService) fetchCache(ctx context.Context, filter repository.LearningPlanFilter) (dto.PlanListResult, bool) {
	if s.cache == nil {
		return dto.PlanListResult{}, false
	}
	payload, err := s.cache.Get(ctx, s.cacheKey(ctx, filter)).Result()
	if err != nil {
		return dto.PlanListResult{}, false
	}

	var result dto.PlanListResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode plan cache")
		return dto.PlanListResult{}, false
	}
	return result, true
}

func (s *learningPlanService) writeCache(ctx context.Context, filter repository.LearningPlanFilter, result dto.PlanListResult) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode plan cache")
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(ctx, filter), payload, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store plan cache")
	}
}

// invalidate bumps the per user cache version so older list entries are
// never read again and expire on their own.
func (s *learningPlanService) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, versionKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate plan cache")
	}
}

func (s *learningPlanService) cacheKey(ctx context.Context, filter repository.LearningPlanFilter) string {
	version, err := s.cache.Get(ctx, versionKey(filter.UserID)).Result()
	if err != nil {
		version = "0"
	}
	return strings.Join([]string{
		"plans:v1",
		strconv.FormatUint(uint64(filter.UserID), 10),
		version,
		filter.Sort,
		filter.Search,
		strconv.Itoa(filter.Page),
		strconv.Itoa(filter.PageSize),
	}, ":")
}

func versionKey(userID uint) string {
	return "plans:v1:version:" + strconv.FormatUint(uint64(userID), 10)
}

// loadOwnedPlan fetches a plan and checks that userID owns it.
func loadOwnedPlan(ctx context.Context, repo repository.LearningPlanRepository, userID uint, publicID string) (models.LearningPlan, error) {
	if _, err := uuid.Parse(publicID); err != nil {
		return models.LearningPlan{}, ErrPlanNotFound
	}

	plan, err := repo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LearningPlan{}, ErrPlanNotFound
		}
		return models.LearningPlan{}, err
	}
	if plan.UserID != userID {
		return models.LearningPlan{}, ErrPlanForbidden
	}
	return plan, nil
}

func planDay(plan models.LearningPlan, day int) (models.PlanDay, error) {
	for _, d := range plan.Days {
		if d.Day == day {
			return d, nil
		}
	}
	return models.PlanDay{}, fmt.Errorf("%w: day %d of %d", ErrDayOutOfRange, day, len(plan.Days))
}

func toModelDays(days []dto.PlanDay) []models.PlanDay {
	result := make([]models.PlanDay, 0, len(days))
	for _, day := range days {
		result = append(result, models.PlanDay{
			Day:        day.Day,
			Title:      day.Title,
			Subtopics:  append([]string{}, day.Subtopics...),
			Objectives: append([]string{}, day.Objectives...),
		})
	}
	return result
}

func toPlanResponse(plan models.LearningPlan) dto.PlanResponse {
	progress := make(map[int]models.PlanDayProgress, len(plan.Progress))
	for _, row := range plan.Progress {
		progress[row.Day] = row
	}

	days := make([]dto.PlanDayResponse, 0, len(plan.Days))
	completed := 0
	for _, day := range plan.Days {
		row := progress[day.Day]
		if row.Completed {
			completed++
		}
		days = append(days, dto.PlanDayResponse{
			Day:         day.Day,
			Title:       day.Title,
			Subtopics:   append([]string{}, day.Subtopics...),
			Objectives:  append([]string{}, day.Objectives...),
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
		})
	}

	return dto.PlanResponse{
		ID:                plan.PublicID,
		Topic:             plan.Topic,
		Level:             plan.Level,
		DailyTime:         plan.DailyTime,
		DurationDays:      plan.DurationDays,
		Title:             plan.Title,
		Overview:          plan.Overview,
		Days:              days,
		CompletedDays:     completed,
		CompletionPercent: completionPercent(completed, len(plan.Days)),
		CreatedAt:         plan.CreatedAt,
		UpdatedAt:         plan.UpdatedAt,
	}
}

func toPlanSummary(plan models.LearningPlan) dto.PlanSummaryResponse {
	completed := 0
	for _, row := range plan.Progress {
		if row.Completed {
			completed++
		}
	}
	return dto.PlanSummaryResponse{
		ID:                plan.PublicID,
		Topic:             plan.Topic,
		Title:             plan.Title,
		Level:             plan.Level,
		TotalDays:         len(plan.Days),
		CompletedDays:     completed,
		CompletionPercent: completionPercent(completed, len(plan.Days)),
		CreatedAt:         plan.CreatedAt,
	}
}

func completionPercent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}
