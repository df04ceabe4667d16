package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/repository"
)

type lessonFixture struct {
	lessons LessonService
	plans   LearningPlanService
	client  *stubClient
}

func newLessonFixture(t *testing.T) lessonFixture {
	t.Helper()
	db := newTestDB(t)
	validate := validator.New()
	client := &stubClient{}
	generator := NewGenerationService(client, "", zerolog.Nop())
	profiles := NewProfileService(repository.NewLearnerProfileRepository(db), validate, zerolog.Nop())
	planRepo := repository.NewLearningPlanRepository(db)

	plans := NewLearningPlanService(planRepo, profiles, generator, nil, nil, validate, LearningPlanConfig{}, zerolog.Nop())
	lessons := NewLessonService(planRepo, repository.NewLessonRepository(db), profiles, generator, validate, zerolog.Nop())
	return lessonFixture{lessons: lessons, plans: plans, client: client}
}

func (fx lessonFixture) createPlan(t *testing.T, userID uint) dto.PlanResponse {
	t.Helper()
	fx.client.response = `{"title": "Go", "days": [{"day": 1, "title": "Basics", "subtopics": ["Variables", "Loops"]}, {"day": 2, "title": "Concurrency", "subtopics": ["Goroutines"]}]}`
	plan, err := fx.plans.Create(context.Background(), userID, dto.PlanCreateRequest{Topic: "Go", DurationDays: 2})
	require.NoError(t, err)
	return plan
}

func TestLessonServiceContentIsStoredAndReused(t *testing.T) {
	fx := newLessonFixture(t)
	plan := fx.createPlan(t, 1)
	ctx := context.Background()

	fx.client.response = `{"content": "Variables hold values.", "keyPoints": ["var", "short declaration"], "examples": ["x := 1"], "practicalApplications": []}`
	first, err := fx.lessons.Content(ctx, 1, plan.ID, 1, dto.SubtopicContentRequest{Subtopic: "Variables"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Variables hold values.", first.Content.Content)

	calls := len(fx.client.requests)
	second, err := fx.lessons.Content(ctx, 1, plan.ID, 1, dto.SubtopicContentRequest{Subtopic: "Variables"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, []string{"var", "short declaration"}, second.Content.KeyPoints)
	assert.Equal(t, []string{}, second.Content.PracticalApplications)
	assert.Len(t, fx.client.requests, calls)

	fx.client.response = `{"content": "Refreshed."}`
	refreshed, err := fx.lessons.Content(ctx, 1, plan.ID, 1, dto.SubtopicContentRequest{Subtopic: "Variables", Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.Cached)
	assert.Equal(t, "Refreshed.", refreshed.Content.Content)

	_, err = fx.lessons.Content(ctx, 1, plan.ID, 9, dto.SubtopicContentRequest{Subtopic: "Variables"})
	require.ErrorIs(t, err, ErrDayOutOfRange)

	_, err = fx.lessons.Content(ctx, 2, plan.ID, 1, dto.SubtopicContentRequest{Subtopic: "Variables"})
	require.ErrorIs(t, err, ErrPlanForbidden)
}

func TestLessonServiceGradeStoresAttempt(t *testing.T) {
	fx := newLessonFixture(t)
	plan := fx.createPlan(t, 4)
	ctx := context.Background()

	fx.client.response = `{"content": "Goroutines are lightweight threads.", "keyPoints": ["lightweight threads"]}`
	_, err := fx.lessons.Content(ctx, 4, plan.ID, 2, dto.SubtopicContentRequest{Subtopic: "Goroutines"})
	require.NoError(t, err)

	fx.client.response = "```json\n{\"score\": 7, \"feedback\": \"Good\", \"strengths\": [\"concise\"], \"improvements\": [\"mention scheduler\"]}\n```"
	attempt, err := fx.lessons.Grade(ctx, 4, plan.ID, 2, dto.GradeAnswerRequest{
		Subtopic: "Goroutines",
		Question: "What is a goroutine?",
		Answer:   "A lightweight thread managed by Go.",
	})
	require.NoError(t, err)
	assert.Equal(t, 7.0, attempt.Grading.Score)
	assert.Equal(t, []string{"concise"}, attempt.Grading.Strengths)

	last := fx.client.requests[len(fx.client.requests)-1]
	assert.Contains(t, last.Messages[1].Content, "lightweight threads")

	attempts, err := fx.lessons.Attempts(ctx, 4, plan.ID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "Good", attempts[0].Grading.Feedback)
	assert.Equal(t, []string{"mention scheduler"}, attempts[0].Grading.Improvements)

	_, err = fx.lessons.Grade(ctx, 4, plan.ID, 2, dto.GradeAnswerRequest{Question: "q", Answer: "<p></p>"})
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestLessonServiceQuiz(t *testing.T) {
	fx := newLessonFixture(t)
	plan := fx.createPlan(t, 8)

	fx.client.response = `{"questions": [{"question": "What does a for loop do?", "type": "theory"}]}`
	set, err := fx.lessons.Quiz(context.Background(), 8, plan.ID, 1, dto.QuizCreateRequest{Subtopic: "Loops", Count: 3})
	require.NoError(t, err)
	require.Len(t, set.Questions, 1)
	assert.Equal(t, "What does a for loop do?", set.Questions[0].Question)
}

func TestLessonServiceTutorHistory(t *testing.T) {
	fx := newLessonFixture(t)
	plan := fx.createPlan(t, 6)
	ctx := context.Background()

	fx.client.response = `{"answer": "Use a WaitGroup.", "followUpQuestions": ["What is errgroup?"], "references": ["sync package docs"]}`
	exchange, err := fx.lessons.AskTutor(ctx, 6, plan.ID, dto.TutorQuestionRequest{Question: "How do I wait for goroutines?", Day: 2})
	require.NoError(t, err)
	assert.Equal(t, "Use a WaitGroup.", exchange.Answer.Answer)

	last := fx.client.requests[len(fx.client.requests)-1]
	assert.Contains(t, last.Messages[1].Content, "Concurrency")

	history, err := fx.lessons.TutorHistory(ctx, 6, plan.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, []string{"What is errgroup?"}, history[0].Answer.FollowUpQuestions)
	assert.Equal(t, []string{"sync package docs"}, history[0].Answer.References)

	_, err = fx.lessons.AskTutor(ctx, 6, plan.ID, dto.TutorQuestionRequest{Question: "Day out of range?", Day: 5})
	require.ErrorIs(t, err, ErrDayOutOfRange)
}
