package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learnpath-api/internal/middleware"
	"github.com/noah-isme/gema-learnpath-api/internal/service"
	"github.com/noah-isme/gema-learnpath-api/internal/utils"
)

var errMissingLearner = errors.New("authentication required")

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseDayParam(c *fiber.Ctx) (int, error) {
	day, err := strconv.Atoi(c.Params("day"))
	if err != nil || day < 1 {
		return 0, errors.New("invalid day")
	}
	return day, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requireLearner(c *fiber.Ctx) (uint, error) {
	userID := userIDFromContext(c)
	if userID == 0 {
		return 0, errMissingLearner
	}
	return userID, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) []fiber.Map {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]fiber.Map, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, fiber.Map{
			"field": fieldErr.Field(),
			"rule":  fieldErr.Tag(),
		})
	}
	return details
}

// respondPlanError maps the learning service sentinels shared by plan and lesson routes.
func respondPlanError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrPlanTooLong):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidTopic):
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrInvalidTopic.Error())
	case errors.Is(err, service.ErrEmptyInput):
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrEmptyInput.Error())
	case errors.Is(err, service.ErrPlanNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "learning plan not found")
	case errors.Is(err, service.ErrDayOutOfRange):
		return utils.SendError(c, fiber.StatusNotFound, "plan day not found")
	case errors.Is(err, service.ErrPlanForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "learning plan belongs to another learner")
	default:
		requestLogger(logger, c).Error().Err(err).Msg("failed to " + action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
