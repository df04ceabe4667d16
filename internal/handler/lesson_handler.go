package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/service"
	"github.com/noah-isme/gema-learnpath-api/internal/utils"
)

// LessonHandler exposes lesson content, quiz, grading and tutor endpoints scoped to a plan.
type LessonHandler struct {
	service service.LessonService
	logger  zerolog.Logger
}

// NewLessonHandler constructs a lesson handler.
func NewLessonHandler(service service.LessonService, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		service: service,
		logger:  logger.With().Str("component", "lesson_handler").Logger(),
	}
}

// Register wires lesson routes under a plan group. Middlewares in generate guard the model-backed routes.
func (h *LessonHandler) Register(router fiber.Router, generate ...fiber.Handler) {
	guarded := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, generate...), handler)
	}

	router.Post("/:id/days/:day/content", guarded(h.content)...)
	router.Post("/:id/days/:day/quiz", guarded(h.quiz)...)
	router.Post("/:id/days/:day/grade", guarded(h.grade)...)
	router.Get("/:id/attempts", h.attempts)
	router.Post("/:id/tutor", guarded(h.askTutor)...)
	router.Get("/:id/tutor", h.tutorHistory)
}

func (h *LessonHandler) content(c *fiber.Ctx) error {
	userID, day, ok, err := h.learnerAndDay(c)
	if !ok {
		return err
	}

	var payload dto.SubtopicContentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	lesson, err := h.service.Content(c.UserContext(), userID, c.Params("id"), day, payload)
	if err != nil {
		return respondPlanError(c, h.logger, err, "load lesson content")
	}

	return utils.SendSuccess(c, "lesson content retrieved", lesson)
}

func (h *LessonHandler) quiz(c *fiber.Ctx) error {
	userID, day, ok, err := h.learnerAndDay(c)
	if !ok {
		return err
	}

	var payload dto.QuizCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	set, err := h.service.Quiz(c.UserContext(), userID, c.Params("id"), day, payload)
	if err != nil {
		return respondPlanError(c, h.logger, err, "generate quiz")
	}

	return utils.SendSuccess(c, "quiz generated", set)
}

func (h *LessonHandler) grade(c *fiber.Ctx) error {
	userID, day, ok, err := h.learnerAndDay(c)
	if !ok {
		return err
	}

	var payload dto.GradeAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	attempt, err := h.service.Grade(c.UserContext(), userID, c.Params("id"), day, payload)
	if err != nil {
		return respondPlanError(c, h.logger, err, "grade answer")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "answer graded", attempt)
}

func (h *LessonHandler) attempts(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.service.Attempts(c.UserContext(), userID, c.Params("id"), limit)
	if err != nil {
		return respondPlanError(c, h.logger, err, "list quiz attempts")
	}

	return utils.OK(c, items, "quiz attempts retrieved", fiber.Map{"count": len(items)})
}

func (h *LessonHandler) askTutor(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.TutorQuestionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	exchange, err := h.service.AskTutor(c.UserContext(), userID, c.Params("id"), payload)
	if err != nil {
		return respondPlanError(c, h.logger, err, "answer tutor question")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "tutor answered", exchange)
}

func (h *LessonHandler) tutorHistory(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.service.TutorHistory(c.UserContext(), userID, c.Params("id"), limit)
	if err != nil {
		return respondPlanError(c, h.logger, err, "list tutor history")
	}

	return utils.OK(c, items, "tutor history retrieved", fiber.Map{"count": len(items)})
}

// learnerAndDay writes the error response when ok is false.
func (h *LessonHandler) learnerAndDay(c *fiber.Ctx) (uint, int, bool, error) {
	userID, err := requireLearner(c)
	if err != nil {
		return 0, 0, false, utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}
	day, err := parseDayParam(c)
	if err != nil {
		return 0, 0, false, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return userID, day, true, nil
}
