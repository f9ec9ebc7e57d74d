// Package config discovers and loads workload definition files and their
// companion startup descriptors from a config directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/docload/docload/internal/workload"
)

// startupSuffix marks provisioning descriptors, which are loaded on demand
// by name rather than as workloads.
const startupSuffix = "_startup"

var workloadExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// LoadDir loads every workload definition in dir. A file that fails to parse
// or validate is logged and skipped so one broken definition does not take
// down the rest; a missing directory is an error.
func LoadDir(dir string, log *zap.Logger) ([]*workload.Workload, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config directory: %w", err)
	}

	var workloads []*workload.Workload
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if !workloadExtensions[ext] || strings.HasSuffix(strings.ToLower(stem), startupSuffix) {
			continue
		}

		path := filepath.Join(dir, name)
		wl, err := LoadWorkload(path)
		if err != nil {
			log.Error("skipping workload file", zap.String("file", path), zap.Error(err))
			continue
		}
		log.Info("loaded workload",
			zap.String("workload", wl.Name), zap.Int("tasks", len(wl.Tasks)))
		workloads = append(workloads, wl)
	}
	return workloads, nil
}

// LoadWorkload loads and validates a single workload definition file. The
// workload name is the file stem.
func LoadWorkload(path string) (*workload.Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload file: %w", err)
	}

	// JSON files get a cheap shape check before the full decode; a config
	// directory often holds unrelated JSON.
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("file is not valid JSON")
		}
		if !gjson.GetBytes(data, "tasks").IsArray() {
			return nil, fmt.Errorf("file has no tasks array, not a workload definition")
		}
	}

	if err := validateRaw(data); err != nil {
		return nil, err
	}

	var wl workload.Workload
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("decoding workload: %w", err)
	}
	wl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	normalizeTasks(&wl)
	return &wl, nil
}

// validateRaw runs the schema over the file contents. YAML input is first
// round-tripped through JSON so the validator sees JSON-native types; JSON
// is a YAML subset, so a single decode path covers both.
func validateRaw(data []byte) error {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("decoding workload file: %w", err)
	}
	asJSON, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("workload file is not JSON-representable: %w", err)
	}
	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return err
	}
	return ValidateWorkloadDoc(doc)
}

// normalizeTasks defaults weights and disambiguates duplicate task names by
// suffixing repeats with a counter, so cache keys and reported names stay
// distinct per task.
func normalizeTasks(wl *workload.Workload) {
	seen := make(map[string]int, len(wl.Tasks))
	for i := range wl.Tasks {
		t := &wl.Tasks[i]
		if t.Weight < 1 {
			t.Weight = 1
		}
		n, dup := seen[t.Name]
		seen[t.Name] = n + 1
		if dup {
			t.Name = fmt.Sprintf("%s_%d", t.Name, n)
		}
	}
}

// LoadStartup loads the provisioning descriptor for a workload, looked up as
// <name>_startup.yaml (or .yml/.json) beside the workload files. Absence is
// not an error; the caller gets a nil descriptor.
func LoadStartup(dir, name string) (*workload.Startup, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, name+startupSuffix+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading startup descriptor: %w", err)
		}
		var s workload.Startup
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding startup descriptor %s: %w", path, err)
		}
		return &s, nil
	}
	return nil, nil
}
