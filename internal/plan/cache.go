// Package plan derives and caches the substitution plan for each task's
// command, and turns plans into concrete command batches.
package plan

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/docload/docload/internal/template"
	"github.com/docload/docload/internal/workload"
)

// Binding pairs a parameter spec with the placeholder token it matches
// inside templates.
type Binding struct {
	Spec  workload.ParameterSpec
	Token string
}

// Plan is the cached result of indexing a command's templates: the
// parameter bindings plus the placeholder locations in the primary
// (document/filter/pipeline) and secondary (update/replacement) templates.
// Plans are immutable once built and reused for every execution of the same
// task for the life of the process.
type Plan struct {
	Bindings  []Binding
	Primary   template.PathMap
	Secondary template.PathMap
}

// Cache memoizes plans keyed by task identity and command kind. It is
// written once per key and read on every invocation from any worker, so
// reads take a shared lock and racing first builders are collapsed through
// singleflight. There is no eviction: workload definitions are immutable for
// the life of a run.
type Cache struct {
	mu    sync.RWMutex
	plans map[string]*Plan
	group singleflight.Group
}

// NewCache creates an empty plan cache.
func NewCache() *Cache {
	return &Cache{plans: make(map[string]*Plan)}
}

// GetOrBuild returns the plan for (taskID, def.Kind), indexing the command's
// templates on first use.
func (c *Cache) GetOrBuild(taskID string, def *workload.CommandDefinition) *Plan {
	key := taskID + ":" + string(def.Kind)

	c.mu.RLock()
	p, ok := c.plans[key]
	c.mu.RUnlock()
	if ok {
		return p
	}

	built, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		p, ok := c.plans[key]
		c.mu.RUnlock()
		if ok {
			return p, nil
		}
		p = build(def)
		c.mu.Lock()
		c.plans[key] = p
		c.mu.Unlock()
		return p, nil
	})
	return built.(*Plan)
}

// Len reports the number of cached plans.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plans)
}

// build indexes both templates against the full token set. Building is
// idempotent, so concurrent duplicate builds would be harmless; singleflight
// just keeps them from burning CPU.
func build(def *workload.CommandDefinition) *Plan {
	bindings := make([]Binding, len(def.Parameters))
	tokens := make([]string, len(def.Parameters))
	for i, spec := range def.Parameters {
		bindings[i] = Binding{Spec: spec, Token: spec.Token()}
		tokens[i] = bindings[i].Token
	}
	return &Plan{
		Bindings:  bindings,
		Primary:   template.Index(def.Primary(), tokens),
		Secondary: template.Index(def.Secondary(), tokens),
	}
}
