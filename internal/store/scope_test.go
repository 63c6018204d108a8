package store

import (
	"testing"

	"github.com/FermatTheorem/NoShitProxy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeDefaultWhenUnset(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.GetScope()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.Include)
	assert.Empty(t, cfg.Exclude)
	assert.False(t, cfg.Drop)
}

func TestScopeRoundTrip(t *testing.T) {
	s := newTestStore(t)

	saved := models.ScopeConfig{
		Include: []string{"api.example.com/*"},
		Exclude: []string{"*/health"},
		Drop:    true,
	}
	require.NoError(t, s.SetScope(saved))

	loaded, err := s.GetScope()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	// A second save replaces, never versions.
	saved.Drop = false
	require.NoError(t, s.SetScope(saved))
	loaded, err = s.GetScope()
	require.NoError(t, err)
	assert.False(t, loaded.Drop)
}
