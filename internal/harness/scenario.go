package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recordselect/internal/queryir"
)

// Scenario defines a query scenario.
// A scenario declares record types, seeds records and runs select steps,
// asserting on each step's outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schemas lists CUE files declaring record types.
	// Paths are relative to the scenario file location.
	Schemas []string `yaml:"schemas,omitempty"`

	// Schema is inline CUE source, compiled after Schemas.
	Schema string `yaml:"schema,omitempty"`

	// Backends restricts the resolvers the scenario runs against.
	// Empty means every backend.
	Backends []string `yaml:"backends,omitempty"`

	// Strict rejects WHERE and ORDER fields the schema does not declare.
	Strict bool `yaml:"strict,omitempty"`

	// Seed lists records loaded before the first step, in order.
	Seed []SeedSet `yaml:"seed,omitempty"`

	// Steps are the select queries to run.
	Steps []Step `yaml:"steps"`
}

// SeedSet is a batch of records of one type.
type SeedSet struct {
	Type    string           `yaml:"type"`
	Records []map[string]any `yaml:"records"`
}

// Step runs one select and checks its outcome.
type Step struct {
	// Name labels the step in results and golden files.
	Name string `yaml:"name"`

	// Select is the record type to query.
	Select string `yaml:"select"`

	// Where entries, as accepted by queryir.ParseWhere.
	Where []map[string]any `yaml:"where,omitempty"`

	// Order maps field to direction; mapping order is significant.
	Order queryir.OrderMap `yaml:"order,omitempty"`

	// Limit is applied when set; a pointer so limit: 0 can be tested.
	Limit *int `yaml:"limit,omitempty"`

	// Op is the terminal call: get (default), all, first or last.
	Op string `yaml:"op,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step only has to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// IDs are the expected record identities in result order.
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected number of records.
	Count *int `yaml:"count,omitempty"`

	// Error is the expected QueryError code, e.g. EMPTY_RESULT.
	Error string `yaml:"error,omitempty"`

	// Records are positional subset matches on record fields.
	Records []map[string]any `yaml:"records,omitempty"`
}

// Terminal operation names.
const (
	OpGet   = "get"
	OpAll   = "all"
	OpFirst = "first"
	OpLast  = "last"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Schema paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, schemaPath := range scenario.Schemas {
		if !filepath.IsAbs(schemaPath) {
			scenario.Schemas[i] = filepath.Join(base, schemaPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Schemas) == 0 && s.Schema == "" {
		return fmt.Errorf("schemas or schema is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, schemaPath := range s.Schemas {
		if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", schemaPath)
		}
	}

	for _, b := range s.Backends {
		if !knownBackend(b) {
			return fmt.Errorf("unknown backend %q", b)
		}
	}

	for i, seed := range s.Seed {
		if seed.Type == "" {
			return fmt.Errorf("seed[%d]: type is required", i)
		}
	}

	names := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if names[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		names[step.Name] = true

		switch step.Op {
		case "", OpGet, OpAll, OpFirst, OpLast:
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}

		if e := step.Expect; e != nil && e.Error != "" && (e.IDs != nil || e.Count != nil || e.Records != nil) {
			return fmt.Errorf("steps[%d].expect: error cannot be combined with ids, count or records", i)
		}
	}

	return nil
}
