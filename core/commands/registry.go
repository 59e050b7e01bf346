package commands

import (
	"fmt"
	"sort"
	"strings"

	"CoinBot/core"
)

// Registry maps command names and aliases to manifests.
type Registry struct {
	byName    map[string]*Manifest
	manifests []*Manifest
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Manifest{}}
}

// Register adds a manifest. A name or alias that is already taken, or a
// malformed manifest, is a programming error and panics.
func (r *Registry) Register(m Manifest) {
	if m.Name == "" || m.Execute == nil {
		panic(fmt.Sprintf("commands: manifest %q needs a name and an Execute func", m.Name))
	}
	seen := map[string]bool{}
	for _, arg := range m.Args {
		if arg.Kind == nil || arg.Name == "" || seen[arg.Name] {
			panic(fmt.Sprintf("commands: %s has a malformed argument %q", m.Name, arg.Name))
		}
		seen[arg.Name] = true
	}

	manifest := &m
	for _, key := range append([]string{m.Name}, m.Aliases...) {
		key = strings.ToLower(key)
		if existing, ok := r.byName[key]; ok {
			panic(fmt.Sprintf("commands: %q of %s is already registered by %s", key, m.Name, existing.Name))
		}
		r.byName[key] = manifest
	}
	r.manifests = append(r.manifests, manifest)
	core.LogDebugF("Registered command: %s %v", m.Name, m.Aliases)
}

// Lookup finds an enabled command by name or alias, ignoring case.
func (r *Registry) Lookup(name string) (*Manifest, bool) {
	m, ok := r.byName[strings.ToLower(name)]
	if !ok || m.Disabled {
		return nil, false
	}
	return m, true
}

// All returns the enabled commands sorted by category, then name.
func (r *Registry) All() []*Manifest {
	var all []*Manifest
	for _, m := range r.manifests {
		if !m.Disabled {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Category != all[j].Category {
			return all[i].Category < all[j].Category
		}
		return all[i].Name < all[j].Name
	})
	return all
}
