package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/service"
	"github.com/noah-isme/gema-learnpath-api/internal/utils"
)

// ProfileHandler exposes the learner profile used to personalise generation.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register wires profile routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/", h.get)
	router.Put("/", h.upsert)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	profile, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "learner profile not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch learner profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch profile")
	}

	return utils.OK(c, profile, "learner profile retrieved", nil)
}

func (h *ProfileHandler) upsert(c *fiber.Ctx) error {
	userID, err := requireLearner(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.ProfileUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := h.service.Upsert(c.UserContext(), userID, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to save learner profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to save profile")
	}

	return utils.SendSuccess(c, "learner profile saved", profile)
}
