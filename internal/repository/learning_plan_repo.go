package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-learnpath-api/internal/models"
)

// LearningPlanFilter describes filters applied to plan listings.
type LearningPlanFilter struct {
	UserID   uint
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// LearningPlanRepository exposes plan persistence helpers.
type LearningPlanRepository interface {
	Create(ctx context.Context, plan *models.LearningPlan) error
	GetByPublicID(ctx context.Context, publicID string) (models.LearningPlan, error)
	List(ctx context.Context, filter LearningPlanFilter) ([]models.LearningPlan, int64, error)
	Delete(ctx context.Context, id uint) error
	UpsertProgress(ctx context.Context, progress *models.PlanDayProgress) error
}

type learningPlanRepository struct {
	db *gorm.DB
}

// NewLearningPlanRepository constructs a repository.
func NewLearningPlanRepository(db *gorm.DB) LearningPlanRepository {
	return &learningPlanRepository{db: db}
}

func (r *learningPlanRepository) Create(ctx context.Context, plan *models.LearningPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *learningPlanRepository) GetByPublicID(ctx context.Context, publicID string) (models.LearningPlan, error) {
	var plan models.LearningPlan
	err := r.db.WithContext(ctx).
		Preload("Progress", func(db *gorm.DB) *gorm.DB { return db.Order("day ASC") }).
		Where("public_id = ?", publicID).
		First(&plan).Error
	return plan, err
}

func (r *learningPlanRepository) List(ctx context.Context, filter LearningPlanFilter) ([]models.LearningPlan, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LearningPlan{}).Where("user_id = ?", filter.UserID)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(topic) LIKE ? OR LOWER(title) LIKE ?", pattern, pattern)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(planSortClause(filter.Sort))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var plans []models.LearningPlan
	if err := query.Preload("Progress").Find(&plans).Error; err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *learningPlanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.PlanDayProgress{},
			&models.LessonContent{},
			&models.QuizAttempt{},
			&models.TutorExchange{},
		} {
			if err := tx.Where("plan_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.LearningPlan{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *learningPlanRepository) UpsertProgress(ctx context.Context, progress *models.PlanDayProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "updated_at"}),
	}).Create(progress).Error
}

func planSortClause(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "oldest", "created_at", "created_at:asc":
		return "created_at ASC"
	case "topic", "topic:asc":
		return "topic ASC"
	default:
		return "created_at DESC"
	}
}
