package config

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// workloadSchema is the structural contract for workload files. It is kept
// deliberately loose: parameter option fields are type-specific and the
// engine degrades gracefully on unknown type tags, so only the skeleton the
// planner depends on is enforced here.
const workloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "runStartUpFrequency": {"type": "string"},
    "tasks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["taskName", "command"],
        "properties": {
          "taskName": {"type": "string", "minLength": 1},
          "taskWeight": {"type": "integer", "minimum": 1},
          "command": {
            "type": "object",
            "required": ["type", "database", "collection"],
            "properties": {
              "type": {
                "type": "string",
                "enum": ["insert", "find", "update", "replace", "delete", "aggregate"]
              },
              "database": {"type": "string", "minLength": 1},
              "collection": {"type": "string", "minLength": 1},
              "batchSize": {"type": "integer", "minimum": 1},
              "limit": {"type": "integer", "minimum": 0},
              "parameters": {
                "type": "array",
                "items": {
                  "type": "object",
                  "required": ["name", "type"],
                  "properties": {
                    "name": {"type": "string", "minLength": 1},
                    "type": {"type": "string", "minLength": 1}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledWorkloadSchema = jsonschema.MustCompileString("workload.schema.json", workloadSchema)

// ValidateWorkloadDoc checks a decoded workload document against the
// embedded schema. doc must carry JSON-native types, i.e. come from a
// json.Unmarshal into any.
func ValidateWorkloadDoc(doc any) error {
	if err := compiledWorkloadSchema.Validate(doc); err != nil {
		return fmt.Errorf("workload definition is not valid: %w", err)
	}
	return nil
}
