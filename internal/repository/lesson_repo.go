package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-learnpath-api/internal/models"
)

// LessonRepository persists lesson content, graded attempts and tutor exchanges.
type LessonRepository interface {
	FindContent(ctx context.Context, planID uint, day int, subtopic string) (models.LessonContent, error)
	UpsertContent(ctx context.Context, content *models.LessonContent) error
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	ListAttempts(ctx context.Context, planID uint, limit int) ([]models.QuizAttempt, error)
	CreateTutorExchange(ctx context.Context, exchange *models.TutorExchange) error
	ListTutorExchanges(ctx context.Context, planID uint, limit int) ([]models.TutorExchange, error)
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository constructs a repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) FindContent(ctx context.Context, planID uint, day int, subtopic string) (models.LessonContent, error) {
	var content models.LessonContent
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND day = ? AND subtopic = ?", planID, day, subtopic).
		First(&content).Error
	return content, err
}

func (r *lessonRepository) UpsertContent(ctx context.Context, content *models.LessonContent) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}, {Name: "day"}, {Name: "subtopic"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "key_points", "examples", "applications", "updated_at"}),
	}).Create(content).Error
}

func (r *lessonRepository) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *lessonRepository) ListAttempts(ctx context.Context, planID uint, limit int) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&attempts).Error
	return attempts, err
}

func (r *lessonRepository) CreateTutorExchange(ctx context.Context, exchange *models.TutorExchange) error {
	return r.db.WithContext(ctx).Create(exchange).Error
}

func (r *lessonRepository) ListTutorExchanges(ctx context.Context, planID uint, limit int) ([]models.TutorExchange, error) {
	var exchanges []models.TutorExchange
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(normalizeLimit(limit)).
		Find(&exchanges).Error
	return exchanges, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}
