package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionService_Bounds(t *testing.T) {
	svc := NewProjectionService(4, 10, 2, SeasonDefaults{UserClub: "Chelsea"}, quietLogger())

	_, err := svc.Project(context.Background(), ProjectionRequest{Runs: 11}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Project(context.Background(), ProjectionRequest{Runs: -1}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestProjectionService_Defaults(t *testing.T) {
	svc := NewProjectionService(4, 10, 2, SeasonDefaults{UserClub: "Chelsea"}, quietLogger())

	result, err := svc.Project(context.Background(), ProjectionRequest{Seed: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Runs)
	assert.Equal(t, "Chelsea", result.User.Club)
	assert.Len(t, result.Clubs, 4)
}
