package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-learnpath-api/internal/models"
)

// LearnerProfileRepository persists learner personalisation settings.
type LearnerProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.LearnerProfile, error)
	Upsert(ctx context.Context, profile *models.LearnerProfile) error
}

type learnerProfileRepository struct {
	db *gorm.DB
}

// NewLearnerProfileRepository constructs a repository.
func NewLearnerProfileRepository(db *gorm.DB) LearnerProfileRepository {
	return &learnerProfileRepository{db: db}
}

func (r *learnerProfileRepository) GetByUserID(ctx context.Context, userID uint) (models.LearnerProfile, error) {
	var profile models.LearnerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	return profile, err
}

func (r *learnerProfileRepository) Upsert(ctx context.Context, profile *models.LearnerProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"qualification", "specialization", "profession", "include_code",
			"example_types", "focus_areas", "updated_at",
		}),
	}).Create(profile).Error
}
