package plan

import (
	"fmt"

	"github.com/docload/docload/internal/datagen"
	"github.com/docload/docload/internal/template"
	"github.com/docload/docload/internal/workload"
)

// ConcreteBatch is one invocation's worth of fully substituted command
// bodies, ready to hand to the database driver.
type ConcreteBatch struct {
	Definition *workload.CommandDefinition

	// Bodies holds one substituted primary body per repetition: documents
	// for inserts, filters for reads and mutations, the pipeline for
	// aggregates.
	Bodies []*template.Node

	// Update is the substituted secondary body for update/replace kinds,
	// nil otherwise. It is built from the final repetition's values; see
	// Planner.Build.
	Update *template.Node

	// LastValues is the ValueSet of the final repetition, kept for
	// debug logging.
	LastValues datagen.ValueSet
}

// Planner orchestrates one command invocation: resolve the cached plan,
// generate fresh values per repetition, substitute them into template
// copies, and assemble the batch.
type Planner struct {
	cache *Cache
	gen   *datagen.Generator
}

// NewPlanner creates a Planner over a shared cache and generator.
func NewPlanner(cache *Cache, gen *datagen.Generator) *Planner {
	return &Planner{cache: cache, gen: gen}
}

// Build produces the concrete batch for one execution of taskID's command.
//
// Values are generated in parameter declaration order so concat parameters
// can reference anything declared before them. When batchSize exceeds one,
// the update/replacement body is substituted with the final repetition's
// values only, while filters vary per repetition. That asymmetry is
// inherited behavior workload authors rely on; it is deliberately not
// unified here.
func (p *Planner) Build(def *workload.CommandDefinition, taskID string) (*ConcreteBatch, error) {
	if !def.Kind.Known() {
		return nil, fmt.Errorf("unsupported command kind %q", def.Kind)
	}
	primary := def.Primary()
	if primary == nil {
		return nil, fmt.Errorf("command kind %q has no template to build from", def.Kind)
	}

	cached := p.cache.GetOrBuild(taskID, def)
	size := def.Batch()

	batch := &ConcreteBatch{
		Definition: def,
		Bodies:     make([]*template.Node, 0, size),
	}

	var tokenValues map[string]any
	for i := 0; i < size; i++ {
		values := make(datagen.ValueSet, len(cached.Bindings))
		tokenValues = make(map[string]any, len(cached.Bindings))
		for _, b := range cached.Bindings {
			v := p.gen.Generate(b.Spec, values)
			values[b.Spec.Name] = v
			tokenValues[b.Token] = v
		}
		body, err := template.Substitute(primary, cached.Primary, tokenValues, true)
		if err != nil {
			return nil, fmt.Errorf("building body %d for task %s: %w", i, taskID, err)
		}
		batch.Bodies = append(batch.Bodies, body)
		batch.LastValues = values
	}

	if secondary := def.Secondary(); secondary != nil {
		update, err := template.Substitute(secondary, cached.Secondary, tokenValues, true)
		if err != nil {
			return nil, fmt.Errorf("building update body for task %s: %w", taskID, err)
		}
		batch.Update = update
	}
	return batch, nil
}
