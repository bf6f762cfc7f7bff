package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry()

	p, err := reg.Resolve("production")
	require.NoError(t, err)
	assert.Equal(t, "production", p.Name)
	assert.False(t, p.Default)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Resolve("nonexistent")
	require.Error(t, err)

	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nonexistent", notFound.Name)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistry_Default(t *testing.T) {
	reg := NewRegistry()

	def := reg.Default()
	assert.Equal(t, "basic", def.Name)
	assert.True(t, def.Default)
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry()

	profiles := reg.List()
	require.Len(t, profiles, 5)
	assert.Equal(t, []string{"basic", "production", "safe", "test", "minimal"}, reg.Names())

	// List returns a copy; mutating it must not affect the registry.
	profiles[0].Name = "mutated"
	assert.Equal(t, "basic", reg.List()[0].Name)
}
