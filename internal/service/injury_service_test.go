package service

import (
	"alcyxob/getsfit/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestInjury_ReportAndResolve(t *testing.T) {
	h := newHarness(t)
	owner := h.user("owner@test.dev")
	other := h.user("other@test.dev")

	injury, err := h.injuries.Report(h.ctx, owner.ID, " Shoulder ", domain.SeverityModerate, "  tweaked it  ")
	require.NoError(t, err)
	assert.Equal(t, domain.AreaShoulder, injury.BodyArea)
	assert.Equal(t, "tweaked it", injury.Notes)

	active, err := h.injuries.ListActive(h.ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	assert.ErrorIs(t, h.injuries.Resolve(h.ctx, other.ID, injury.ID), ErrInjuryNotFound)
	assert.ErrorIs(t, h.injuries.Resolve(h.ctx, owner.ID, primitive.NewObjectID()), ErrInjuryNotFound)

	require.NoError(t, h.injuries.Resolve(h.ctx, owner.ID, injury.ID))
	// Resolving twice is a no-op.
	require.NoError(t, h.injuries.Resolve(h.ctx, owner.ID, injury.ID))

	active, err = h.injuries.ListActive(h.ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInjury_Validation(t *testing.T) {
	h := newHarness(t)
	u := h.user("owner@test.dev")

	_, err := h.injuries.Report(h.ctx, u.ID, "tail", domain.SeverityMild, "")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = h.injuries.Report(h.ctx, u.ID, domain.AreaKnee, "excruciating", "")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
