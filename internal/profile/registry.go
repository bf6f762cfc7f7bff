// Package profile provides the static registry of ansible-lint profiles.
//
// Profiles are rule-strictness presets understood by the wrapped
// ansible-lint binary. The registry is built once at process start and is
// read-only afterwards; resolving an unknown name fails fast so that no
// subprocess is ever spawned for a profile the linter would reject.
package profile

import (
	"fmt"

	"github.com/playlint/playlint/models"
)

// ErrNotFound is returned when a requested profile is not registered.
type ErrNotFound struct {
	Name string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("profile %q not found", e.Name)
}

// Registry holds the supported lint profiles in a fixed order.
type Registry struct {
	profiles []models.Profile
	byName   map[string]models.Profile
	def      models.Profile
}

// NewRegistry creates the registry with the supported ansible-lint
// profiles. The slice order is the order reported to clients.
func NewRegistry() *Registry {
	profiles := []models.Profile{
		{Name: "basic", Description: "Basic rule set for general use", Default: true},
		{Name: "production", Description: "Strict rules for production environments"},
		{Name: "safe", Description: "Conservative rules that avoid false positives"},
		{Name: "test", Description: "Rules optimized for test playbooks"},
		{Name: "minimal", Description: "Minimal rule set for quick checks"},
	}
	return newRegistry(profiles)
}

func newRegistry(profiles []models.Profile) *Registry {
	r := &Registry{
		profiles: profiles,
		byName:   make(map[string]models.Profile, len(profiles)),
	}
	for _, p := range profiles {
		r.byName[p.Name] = p
		if p.Default {
			r.def = p
		}
	}
	return r
}

// Resolve returns the profile registered under name.
func (r *Registry) Resolve(name string) (models.Profile, error) {
	p, ok := r.byName[name]
	if !ok {
		return models.Profile{}, &ErrNotFound{Name: name}
	}
	return p, nil
}

// List returns all profiles in registration order.
func (r *Registry) List() []models.Profile {
	out := make([]models.Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Default returns the profile used when a request names none.
func (r *Registry) Default() models.Profile {
	return r.def
}

// Names returns the profile names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name
	}
	return names
}
