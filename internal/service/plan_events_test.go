package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-learnpath-api/internal/dto"
)

func TestPlanEventPublisherWithoutConnection(t *testing.T) {
	publisher := NewPlanEventPublisher(nil, "", zerolog.Nop())
	require.NoError(t, publisher.Publish(context.Background(), dto.PlanEvent{Type: PlanEventGenerated, PlanID: "p"}))

	nats, ok := publisher.(*natsPlanPublisher)
	require.True(t, ok)
	assert.Equal(t, "gema.learnpath.plan.progress", nats.subject(PlanEventProgress))

	custom := NewPlanEventPublisher(nil, "school.plans", zerolog.Nop()).(*natsPlanPublisher)
	assert.Equal(t, "school.plans.plan.deleted", custom.subject(PlanEventDeleted))
}
