package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/models"
	"github.com/noah-isme/gema-learnpath-api/internal/repository"
)

// ErrProfileNotFound indicates the user has not saved a learner profile yet.
var ErrProfileNotFound = errors.New("learner profile not found")

// ProfileService manages learner personalisation settings.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	Upsert(ctx context.Context, userID uint, req dto.ProfileUpsertRequest) (dto.ProfileResponse, error)
	// Lookup returns the profile used to personalise prompts, or nil when
	// the user has none.
	Lookup(ctx context.Context, userID uint) (*dto.LearnerProfile, error)
}

type profileService struct {
	repo      repository.LearnerProfileRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(repo repository.LearnerProfileRepository, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, err
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) Upsert(ctx context.Context, userID uint, req dto.ProfileUpsertRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProfileResponse{}, err
	}

	profile := models.LearnerProfile{
		UserID:         userID,
		Qualification:  sanitizeText(s.sanitizer, req.Qualification),
		Specialization: sanitizeText(s.sanitizer, req.Specialization),
		Profession:     sanitizeText(s.sanitizer, req.Profession),
		IncludeCode:    req.IncludeCode == nil || *req.IncludeCode,
		ExampleTypes:   sanitizeList(s.sanitizer, req.PreferredExampleTypes),
		FocusAreas:     sanitizeList(s.sanitizer, req.FocusAreas),
	}

	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("save learner profile: %w", err)
	}

	stored, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Str("profession", stored.Profession).Msg("learner profile saved")
	return toProfileResponse(stored), nil
}

func (s *profileService) Lookup(ctx context.Context, userID uint) (*dto.LearnerProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	learner := toLearnerProfile(profile)
	return &learner, nil
}

func toLearnerProfile(profile models.LearnerProfile) dto.LearnerProfile {
	return dto.LearnerProfile{
		Qualification:         profile.Qualification,
		Specialization:        profile.Specialization,
		Profession:            profile.Profession,
		IncludeCode:           profile.IncludeCode,
		PreferredExampleTypes: append([]string{}, profile.ExampleTypes...),
		FocusAreas:            append([]string{}, profile.FocusAreas...),
	}
}

func toProfileResponse(profile models.LearnerProfile) dto.ProfileResponse {
	return dto.ProfileResponse{
		LearnerProfile: toLearnerProfile(profile),
		UpdatedAt:      profile.UpdatedAt,
	}
}
