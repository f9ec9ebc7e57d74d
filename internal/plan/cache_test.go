package plan

import (
	"sync"
	"testing"

	"github.com/docload/docload/internal/template"
	"github.com/docload/docload/internal/workload"
)

func insertDef(t *testing.T) *workload.CommandDefinition {
	t.Helper()
	return &workload.CommandDefinition{
		Kind:       workload.KindInsert,
		Database:   "shop",
		Collection: "orders",
		Document:   template.MustParse(`{"_id": "@id", "ts": "@now"}`),
		Parameters: []workload.ParameterSpec{
			{Name: "id", Type: "guid"},
			{Name: "now", Type: "unix_timestamp"},
		},
	}
}

func TestCacheGetOrBuildMemoizes(t *testing.T) {
	c := NewCache()
	def := insertDef(t)

	p1 := c.GetOrBuild("wl_task", def)
	p2 := c.GetOrBuild("wl_task", def)
	if p1 != p2 {
		t.Error("repeated GetOrBuild returned distinct plans for the same key")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCachePlanContents(t *testing.T) {
	c := NewCache()
	p := c.GetOrBuild("wl_task", insertDef(t))

	if len(p.Bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(p.Bindings))
	}
	if p.Bindings[0].Token != "@id" || p.Bindings[1].Token != "@now" {
		t.Errorf("tokens = %q, %q, want @id, @now", p.Bindings[0].Token, p.Bindings[1].Token)
	}
	if len(p.Primary["@id"]) != 1 || len(p.Primary["@now"]) != 1 {
		t.Errorf("primary path map = %v, want one path per token", p.Primary)
	}
	if len(p.Secondary) != 0 {
		t.Errorf("secondary path map = %v, want empty for insert", p.Secondary)
	}
}

func TestCacheKeyIncludesKind(t *testing.T) {
	c := NewCache()
	ins := insertDef(t)
	del := &workload.CommandDefinition{
		Kind:       workload.KindDelete,
		Database:   "shop",
		Collection: "orders",
		Filter:     template.MustParse(`{"_id": "@id"}`),
		Parameters: []workload.ParameterSpec{{Name: "id", Type: "guid"}},
	}

	p1 := c.GetOrBuild("wl_task", ins)
	p2 := c.GetOrBuild("wl_task", del)
	if p1 == p2 {
		t.Error("different kinds under the same task id shared a plan")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheConcurrentFirstBuild(t *testing.T) {
	c := NewCache()
	def := insertDef(t)

	const workers = 50
	plans := make([]*Plan, workers)
	var wg sync.WaitGroup
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			plans[i] = c.GetOrBuild("wl_task", def)
		}(i)
	}
	start.Done()
	wg.Wait()

	for i := 1; i < workers; i++ {
		if plans[i] != plans[0] {
			t.Fatalf("worker %d got a different plan instance", i)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after concurrent builds", c.Len())
	}
}
