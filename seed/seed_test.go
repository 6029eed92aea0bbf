package seed

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backendprojects/store"
)

func TestRun(t *testing.T) {
	s := store.NewMemoryStore()
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	res, err := Run(ctx, s, false, logger)
	require.NoError(t, err)
	assert.Equal(t, len(samples), res.Clients)

	projects, err := s.Projects().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, res.Projects)

	for _, p := range projects {
		assert.True(t, p.Status.IsValid(), p.Name)
		c, err := s.Clients().FindByID(ctx, p.ClientID)
		require.NoError(t, err)
		assert.NotNil(t, c, "project %s has no client", p.Name)
	}
}

func TestRun_RefusesSeededStore(t *testing.T) {
	s := store.NewMemoryStore()
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	_, err := Run(ctx, s, false, logger)
	require.NoError(t, err)

	_, err = Run(ctx, s, false, logger)
	assert.ErrorIs(t, err, ErrAlreadySeeded)

	res, err := Run(ctx, s, true, logger)
	require.NoError(t, err)
	clients, err := s.Clients().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2*res.Clients)
}
