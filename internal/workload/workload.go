// Package workload defines the declarative types a workload file decodes
// into: tasks, command definitions, parameter specs and startup descriptors.
// These are read-only once loaded; everything downstream derives from them.
package workload

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/docload/docload/internal/template"
)

// CommandKind enumerates the supported database operations.
type CommandKind string

const (
	KindInsert    CommandKind = "insert"
	KindFind      CommandKind = "find"
	KindUpdate    CommandKind = "update"
	KindReplace   CommandKind = "replace"
	KindDelete    CommandKind = "delete"
	KindAggregate CommandKind = "aggregate"
)

// Known reports whether k is one of the supported command kinds.
func (k CommandKind) Known() bool {
	switch k {
	case KindInsert, KindFind, KindUpdate, KindReplace, KindDelete, KindAggregate:
		return true
	}
	return false
}

// ParameterSpec describes one synthetic value to generate per repetition.
// Only the fields relevant to the declared type are consulted.
type ParameterSpec struct {
	Name   string `yaml:"name" json:"name"`
	Type   string `yaml:"type" json:"type"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
	As     string `yaml:"as,omitempty" json:"as,omitempty"`

	// Numeric bounds for random_int / random_float.
	Start float64 `yaml:"start,omitempty" json:"start,omitempty"`
	End   float64 `yaml:"end,omitempty" json:"end,omitempty"`

	// Length for random_string.
	Length *int `yaml:"length,omitempty" json:"length,omitempty"`

	// Literal pool for random_list.
	List []any `yaml:"list,omitempty" json:"list,omitempty"`

	// Fixed value for constant_string / constant_int, and the pattern
	// string for concat.
	Value any `yaml:"value,omitempty" json:"value,omitempty"`

	// Keyword arguments for provider-backed types (faker.*).
	Args map[string]any `yaml:"args,omitempty" json:"args,omitempty"`
}

// Token is the placeholder string this parameter matches inside a template.
// Workload authors conventionally reference parameters as "@name"; a name
// already carrying the prefix is used verbatim.
func (p ParameterSpec) Token() string {
	if strings.HasPrefix(p.Name, "@") {
		return p.Name
	}
	return "@" + p.Name
}

// CommandDefinition is one database command template plus its parameters.
// Which template fields apply depends on Kind: insert uses Document,
// aggregate uses Pipeline, the remaining kinds use Filter with Update or
// Replacement for the mutating variants.
type CommandDefinition struct {
	Kind       CommandKind `yaml:"type" json:"type"`
	Database   string      `yaml:"database" json:"database"`
	Collection string      `yaml:"collection" json:"collection"`

	Document    *template.Node `yaml:"document,omitempty" json:"document,omitempty"`
	Pipeline    *template.Node `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`
	Filter      *template.Node `yaml:"filter,omitempty" json:"filter,omitempty"`
	Update      *template.Node `yaml:"update,omitempty" json:"update,omitempty"`
	Replacement *template.Node `yaml:"replacement,omitempty" json:"replacement,omitempty"`

	Parameters []ParameterSpec `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	BatchSize  int             `yaml:"batchSize,omitempty" json:"batchSize,omitempty"`

	// Read extras.
	Projection *template.Node `yaml:"projection,omitempty" json:"projection,omitempty"`
	Limit      int64          `yaml:"limit,omitempty" json:"limit,omitempty"`
	Sort       *template.Node `yaml:"sort,omitempty" json:"sort,omitempty"`
}

// Primary returns the template the batch bodies are built from.
func (c *CommandDefinition) Primary() *template.Node {
	switch c.Kind {
	case KindInsert:
		return c.Document
	case KindAggregate:
		return c.Pipeline
	default:
		return c.Filter
	}
}

// Secondary returns the companion template for update/replace kinds, nil
// otherwise.
func (c *CommandDefinition) Secondary() *template.Node {
	switch c.Kind {
	case KindUpdate:
		return c.Update
	case KindReplace:
		return c.Replacement
	default:
		return nil
	}
}

// Batch returns the effective batch size, defaulting to 1.
func (c *CommandDefinition) Batch() int {
	if c.BatchSize < 1 {
		return 1
	}
	return c.BatchSize
}

// Task pairs a named command with a scheduling weight.
type Task struct {
	Name    string            `yaml:"taskName" json:"taskName"`
	Weight  int               `yaml:"taskWeight" json:"taskWeight"`
	Command CommandDefinition `yaml:"command" json:"command"`
}

// StartupFrequency controls whether provisioning runs before load starts.
type StartupFrequency int

const (
	StartupNever StartupFrequency = iota
	StartupOnce
	StartupAlways
)

func (f StartupFrequency) String() string {
	switch f {
	case StartupOnce:
		return "once"
	case StartupAlways:
		return "always"
	default:
		return "never"
	}
}

// UnmarshalYAML accepts the frequency case-insensitively, defaulting to
// never on anything unrecognized.
func (f *StartupFrequency) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decoding runStartUpFrequency: %w", err)
	}
	switch strings.ToLower(raw) {
	case "once":
		*f = StartupOnce
	case "always":
		*f = StartupAlways
	default:
		*f = StartupNever
	}
	return nil
}

// Workload is one loaded workload definition file.
type Workload struct {
	Name    string           `yaml:"-" json:"-"`
	StartUp StartupFrequency `yaml:"runStartUpFrequency,omitempty" json:"runStartUpFrequency,omitempty"`
	Tasks   []Task           `yaml:"tasks" json:"tasks"`
}

// IndexSpec declares one index to create during provisioning.
type IndexSpec struct {
	Name    string         `yaml:"name" json:"name"`
	Keys    *template.Node `yaml:"keys" json:"keys"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// CollectionSpec declares one collection to ensure during provisioning.
type CollectionSpec struct {
	Name     string      `yaml:"name" json:"name"`
	ShardKey string      `yaml:"shardKey,omitempty" json:"shardKey,omitempty"`
	Indexes  []IndexSpec `yaml:"indexes,omitempty" json:"indexes,omitempty"`
}

// DatabaseSpec groups the collections of one database.
type DatabaseSpec struct {
	Name        string           `yaml:"name" json:"name"`
	Collections []CollectionSpec `yaml:"collections,omitempty" json:"collections,omitempty"`
}

// Startup is the provisioning descriptor loaded from
// <workload>_startup.yaml, consumed once before load begins.
type Startup struct {
	Databases []DatabaseSpec `yaml:"databases,omitempty" json:"databases,omitempty"`
}
