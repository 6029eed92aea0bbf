package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backendprojects/graph/model"
)

// runStoreContract exercises the behaviour every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("insert assigns id", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		c, err := s.Clients().Insert(ctx, &model.Client{Name: "Acme", Email: "a@acme.com", Phone: "555"})
		require.NoError(t, err)
		require.NotEmpty(t, c.ID)

		got, err := s.Clients().FindByID(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, *c, *got)
	})

	t.Run("missing id is absent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		got, err := s.Clients().FindByID(ctx, newID())
		require.NoError(t, err)
		assert.Nil(t, got)

		deleted, err := s.Projects().DeleteByID(ctx, newID())
		require.NoError(t, err)
		assert.Nil(t, deleted)

		updated, err := s.Projects().UpdateByID(ctx, newID(), Fields{model.FieldName: "x"})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("find where filters by field", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, clientID := range []string{"c1", "c1", "c2"} {
			_, err := s.Projects().Insert(ctx, &model.Project{
				Name: "p", Description: "d", Status: model.StatusNotStarted, ClientID: clientID,
			})
			require.NoError(t, err)
		}

		got, err := s.Projects().FindWhere(ctx, Filter{model.FieldClientID: "c1"})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = s.Projects().FindWhere(ctx, Filter{model.FieldStatus: model.StatusNotStarted})
		require.NoError(t, err)
		assert.Len(t, got, 3)

		all, err := s.Projects().FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("update merges fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		p, err := s.Projects().Insert(ctx, &model.Project{
			Name: "Site", Description: "Build site", Status: model.StatusNotStarted, ClientID: "c1",
		})
		require.NoError(t, err)

		// Warm any cache in front of the store.
		_, err = s.Projects().FindByID(ctx, p.ID)
		require.NoError(t, err)

		updated, err := s.Projects().UpdateByID(ctx, p.ID, Fields{model.FieldStatus: string(model.StatusInProgress)})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, model.StatusInProgress, updated.Status)
		assert.Equal(t, "Site", updated.Name)
		assert.Equal(t, "Build site", updated.Description)
		assert.Equal(t, "c1", updated.ClientID)

		got, err := s.Projects().FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, *updated, *got)

		same, err := s.Projects().UpdateByID(ctx, p.ID, Fields{})
		require.NoError(t, err)
		assert.Equal(t, *updated, *same)
	})

	t.Run("delete returns removed document", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		c, err := s.Clients().Insert(ctx, &model.Client{Name: "Acme", Email: "a@acme.com", Phone: "555"})
		require.NoError(t, err)
		_, err = s.Clients().FindByID(ctx, c.ID)
		require.NoError(t, err)

		deleted, err := s.Clients().DeleteByID(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, c.ID, deleted.ID)

		got, err := s.Clients().FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
