package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
	"github.com/noah-isme/gema-learnpath-api/internal/handler"
	"github.com/noah-isme/gema-learnpath-api/internal/models"
	"github.com/noah-isme/gema-learnpath-api/internal/repository"
	"github.com/noah-isme/gema-learnpath-api/internal/service"
)

func TestProfileHandlerUpsertAndGet(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:profile_handler?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LearnerProfile{}))

	profiles := service.NewProfileService(repository.NewLearnerProfileRepository(db), validator.New(), zerolog.Nop())
	app := fiber.New()
	handler.NewProfileHandler(profiles, zerolog.Nop()).Register(app.Group("/api/v2/profile", asLearner(12)))

	resp := doJSON(t, app, http.MethodGet, "/api/v2/profile", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/v2/profile", map[string]interface{}{
		"profession":   "Data Scientist",
		"include_code": false,
		"focus_areas":  []string{"statistics"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v2/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.ProfileResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	assert.Equal(t, "Data Scientist", payload.Data.Profession)
	assert.False(t, payload.Data.IncludeCode)
	assert.Equal(t, []string{"statistics"}, payload.Data.FocusAreas)

	tooLong := make([]string, 11)
	for i := range tooLong {
		tooLong[i] = "x"
	}
	resp = doJSON(t, app, http.MethodPut, "/api/v2/profile", map[string]interface{}{"focus_areas": tooLong})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
