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

func TestProfileServiceUpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(repository.NewLearnerProfileRepository(db), validator.New(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Get(ctx, 11)
	require.ErrorIs(t, err, ErrProfileNotFound)

	lookup, err := svc.Lookup(ctx, 11)
	require.NoError(t, err)
	assert.Nil(t, lookup)

	saved, err := svc.Upsert(ctx, 11, dto.ProfileUpsertRequest{
		Qualification:         "BSc",
		Profession:            "Developer",
		PreferredExampleTypes: []string{"Real world", "real world", " ", "<i>Analogies</i>"},
	})
	require.NoError(t, err)
	assert.True(t, saved.IncludeCode)
	assert.Equal(t, []string{"Real world", "Analogies"}, saved.PreferredExampleTypes)
	assert.Equal(t, []string{}, saved.FocusAreas)

	includeCode := false
	updated, err := svc.Upsert(ctx, 11, dto.ProfileUpsertRequest{Profession: "Manager", IncludeCode: &includeCode})
	require.NoError(t, err)
	assert.Equal(t, "Manager", updated.Profession)
	assert.False(t, updated.IncludeCode)
	assert.Empty(t, updated.PreferredExampleTypes)

	lookup, err = svc.Lookup(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.Equal(t, "Manager", lookup.Profession)
}

func TestProfileServiceValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(repository.NewLearnerProfileRepository(db), validator.New(), zerolog.Nop())

	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = "area"
	}
	_, err := svc.Upsert(context.Background(), 1, dto.ProfileUpsertRequest{FocusAreas: tooMany})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}
