package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/service"
	"github.com/noah-isme/gema-learnpath-api/internal/utils"
)

// PlanHandler exposes learning plan endpoints.
type PlanHandler struct {
	service service.LearningPlanService
	logger  zerolog.Logger
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(service service.LearningPlanService, logger zerolog.Logger) *PlanHandler {
	return &PlanHandler{
		service: service,
		logger:  logger.With().Str("component", "plan_handler").Logger(),
	}
}

// Register wires plan routes. Middlewares in generate run only before plan creation.
func (h *PlanHandler) Register(router fiber.Router, generate ...fiber.Handler) {
	createChain := append(append([]fiber.Handler{}, generate...), h.create)
	router.Post("/", createChain...)
	router.Get("/", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id/days/:day/progress", h.updateProgress)
	router.Delete("/:id", h.delete)
}

func (h *PlanHandler) create(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.PlanCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	plan, err := h.service.Create(c.UserContext(), userID, payload)
	if err != nil {
		return respondPlanError(c, h.logger, err, "generate learning plan")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "learning plan generated", plan)
}

func (h *PlanHandler) list(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize == 0 {
		if legacy, legacyErr := parseQueryInt(c, "page_size"); legacyErr == nil {
			pageSize = legacy
		}
	}

	result, err := h.service.List(c.UserContext(), userID, dto.PlanListRequest{
		Page:     page,
		PageSize: pageSize,
		Sort:     c.Query("sort"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondPlanError(c, h.logger, err, "list learning plans")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"cache_hit":  result.CacheHit,
	}

	return utils.OK(c, result.Items, "learning plans retrieved", meta)
}

func (h *PlanHandler) get(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	plan, err := h.service.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondPlanError(c, h.logger, err, "fetch learning plan")
	}

	return utils.OK(c, plan, "learning plan retrieved", nil)
}

func (h *PlanHandler) updateProgress(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	day, err := parseDayParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PlanProgressRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	plan, err := h.service.UpdateDayProgress(c.UserContext(), userID, c.Params("id"), day, payload)
	if err != nil {
		return respondPlanError(c, h.logger, err, "update plan progress")
	}

	return utils.SendSuccess(c, "plan progress updated", plan)
}

func (h *PlanHandler) delete(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return respondPlanError(c, h.logger, err, "delete learning plan")
	}

	return utils.SendSuccess(c, "learning plan deleted", fiber.Map{"id": id})
}
