package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/handler"
	"github.com/noah-isme/gema-learnpath-api/internal/service"
)

type stubLessonService struct {
	day      int
	planID   string
	limit    int
	tutorReq dto.TutorQuestionRequest
	err      error
}

func (s *stubLessonService) Content(_ context.Context, _ uint, planID string, day int, req dto.SubtopicContentRequest) (dto.LessonContentResponse, error) {
	s.planID, s.day = planID, day
	return dto.LessonContentResponse{PlanID: planID, Day: day, Subtopic: req.Subtopic, Content: dto.DetailedContent{Content: "body"}}, s.err
}

func (s *stubLessonService) Quiz(_ context.Context, _ uint, _ string, day int, _ dto.QuizCreateRequest) (dto.QuizQuestionSet, error) {
	s.day = day
	return dto.QuizQuestionSet{Questions: []dto.QuizQuestion{{Question: "Why?", Type: "theory"}}}, s.err
}

func (s *stubLessonService) Grade(_ context.Context, _ uint, planID string, day int, req dto.GradeAnswerRequest) (dto.QuizAttemptResponse, error) {
	s.day = day
	return dto.QuizAttemptResponse{PlanID: planID, Day: day, Question: req.Question, Grading: dto.GradingResult{Score: 6}}, s.err
}

func (s *stubLessonService) Attempts(_ context.Context, _ uint, _ string, limit int) ([]dto.QuizAttemptResponse, error) {
	s.limit = limit
	return []dto.QuizAttemptResponse{{ID: 1}, {ID: 2}}, s.err
}

func (s *stubLessonService) AskTutor(_ context.Context, _ uint, planID string, req dto.TutorQuestionRequest) (dto.TutorExchangeResponse, error) {
	s.tutorReq = req
	return dto.TutorExchangeResponse{PlanID: planID, Question: req.Question, Answer: dto.TutorAnswer{Answer: "Because."}}, s.err
}

func (s *stubLessonService) TutorHistory(_ context.Context, _ uint, _ string, limit int) ([]dto.TutorExchangeResponse, error) {
	s.limit = limit
	return []dto.TutorExchangeResponse{}, s.err
}

func newLessonApp(svc service.LessonService) *fiber.App {
	app := fiber.New()
	handler.NewLessonHandler(svc, zerolog.Nop()).Register(app.Group("/api/v2/plans", asLearner(5)))
	return app
}

func TestLessonHandlerContent(t *testing.T) {
	svc := &stubLessonService{}
	app := newLessonApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/api/v2/plans/p-1/days/3/content", map[string]string{"subtopic": "Slices"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.LessonContentResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	assert.Equal(t, "Slices", payload.Data.Subtopic)
	assert.Equal(t, "p-1", svc.planID)
	assert.Equal(t, 3, svc.day)
}

func TestLessonHandlerGradeAndAttempts(t *testing.T) {
	svc := &stubLessonService{}
	app := newLessonApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/api/v2/plans/p-1/days/2/grade", map[string]string{"question": "What?", "answer": "That."})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var graded struct {
		Data dto.QuizAttemptResponse `json:"data"`
	}
	decodeResponse(t, resp, &graded)
	assert.Equal(t, 6.0, graded.Data.Grading.Score)

	resp = doJSON(t, app, http.MethodGet, "/api/v2/plans/p-1/attempts?limit=15", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Data []dto.QuizAttemptResponse `json:"data"`
		Meta map[string]int           `json:"meta"`
	}
	decodeResponse(t, resp, &listed)
	assert.Len(t, listed.Data, 2)
	assert.Equal(t, 2, listed.Meta["count"])
	assert.Equal(t, 15, svc.limit)
}

func TestLessonHandlerTutor(t *testing.T) {
	svc := &stubLessonService{}
	app := newLessonApp(svc)

	resp := doJSON(t, app, http.MethodPost, "/api/v2/plans/p-9/tutor", map[string]interface{}{"question": "Why channels?", "day": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, svc.tutorReq.Day)

	resp = doJSON(t, app, http.MethodGet, "/api/v2/plans/p-9/tutor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLessonHandlerErrors(t *testing.T) {
	app := newLessonApp(&stubLessonService{err: service.ErrEmptyInput})
	resp := doJSON(t, app, http.MethodPost, "/api/v2/plans/p-1/days/1/quiz", map[string]interface{}{"subtopic": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	app = newLessonApp(&stubLessonService{err: service.ErrPlanForbidden})
	resp = doJSON(t, app, http.MethodPost, "/api/v2/plans/p-1/days/1/content", map[string]string{"subtopic": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	svc := &stubLessonService{}
	app = newLessonApp(svc)
	resp = doJSON(t, app, http.MethodPost, "/api/v2/plans/p-1/days/-1/content", map[string]string{"subtopic": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, svc.day)
}
