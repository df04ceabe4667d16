package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learnpath-api/internal/models"
)

func setupPlanDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.LearningPlan{},
		&models.PlanDayProgress{},
		&models.LessonContent{},
		&models.QuizAttempt{},
		&models.TutorExchange{},
	))
	return db
}

func TestLearningPlanRepositoryRoundTrip(t *testing.T) {
	db := setupPlanDB(t)
	repo := NewLearningPlanRepository(db)
	ctx := context.Background()

	plan := models.LearningPlan{
		PublicID:     "0b6c6a2e-5f55-4f0e-9d55-0d6f7e1d8a11",
		UserID:       4,
		Topic:        "Go",
		DurationDays: 2,
		Title:        "Go basics",
		Days: []models.PlanDay{
			{Day: 1, Title: "Syntax", Subtopics: []string{"types"}},
			{Day: 2, Title: "Concurrency", Subtopics: []string{"goroutines"}},
		},
	}
	require.NoError(t, repo.Create(ctx, &plan))

	now := time.Now().UTC()
	require.NoError(t, repo.UpsertProgress(ctx, &models.PlanDayProgress{PlanID: plan.ID, Day: 2, Completed: true, CompletedAt: &now}))
	require.NoError(t, repo.UpsertProgress(ctx, &models.PlanDayProgress{PlanID: plan.ID, Day: 2, Completed: false}))

	loaded, err := repo.GetByPublicID(ctx, plan.PublicID)
	require.NoError(t, err)
	require.Len(t, loaded.Days, 2)
	require.Equal(t, []string{"goroutines"}, loaded.Days[1].Subtopics)
	require.Len(t, loaded.Progress, 1)
	require.False(t, loaded.Progress[0].Completed)
	require.Nil(t, loaded.Progress[0].CompletedAt)

	require.NoError(t, repo.Delete(ctx, plan.ID))
	_, err = repo.GetByPublicID(ctx, plan.PublicID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.Delete(ctx, plan.ID), gorm.ErrRecordNotFound)
}

func TestLearningPlanRepositoryListFilters(t *testing.T) {
	db := setupPlanDB(t)
	repo := NewLearningPlanRepository(db)
	ctx := context.Background()

	for i, topic := range []string{"Rust", "Go", "Golang testing"} {
		plan := models.LearningPlan{
			PublicID:     []string{"a1", "b2", "c3"}[i],
			UserID:       1,
			Topic:        topic,
			DurationDays: 1,
		}
		require.NoError(t, repo.Create(ctx, &plan))
	}
	other := models.LearningPlan{PublicID: "d4", UserID: 2, Topic: "Go", DurationDays: 1}
	require.NoError(t, repo.Create(ctx, &other))

	plans, total, err := repo.List(ctx, LearningPlanFilter{UserID: 1, Search: "go", Sort: "topic", PageSize: 1, Page: 1})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, plans, 1)
	require.Equal(t, "Go", plans[0].Topic)
}
