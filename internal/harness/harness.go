package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/pebble/vfs"

	"github.com/roach88/recordselect/internal/activerecord"
	"github.com/roach88/recordselect/internal/compiler"
	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/kvstore"
	"github.com/roach88/recordselect/internal/store"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

// DefaultBackends is the run order when neither the scenario nor the
// caller restricts backends. The first backend's results are reported.
var DefaultBackends = []string{BackendSQLite, BackendPebble}

func knownBackend(name string) bool {
	return name == BackendSQLite || name == BackendPebble
}

type backend interface {
	activerecord.Resolver
	activerecord.Writer
	Close() error
}

// openBackend opens a fresh, empty in-memory store.
func openBackend(name string) (backend, error) {
	switch name {
	case BackendSQLite:
		st, err := store.Open(":memory:")
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendPebble:
		st, err := kvstore.Open("harness", kvstore.WithFS(vfs.NewMem()))
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

type runConfig struct {
	backends []string
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

// WithBackends overrides the scenario's backend list.
func WithBackends(names ...string) Option {
	return func(c *runConfig) { c.backends = names }
}

// WithLogger sets the logger for step diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) { c.logger = logger }
}

// Run executes a scenario and returns the result.
//
// Each backend gets a fresh in-memory store, the same seed records and the
// same steps. Keyless seed records get keys from a per-type
// SequenceGenerator, so runs are reproducible. The first backend's step
// results are checked against the expectations; every other backend must
// produce an identical snapshot.
//
// An error is returned only when the scenario cannot be executed at all
// (schema compile failure, unknown seed type, invalid seed record).
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		backends: scenario.Backends,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.backends) == 0 {
		cfg.backends = DefaultBackends
	}

	registry, err := compileSchemas(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	var baseline []byte
	for i, name := range cfg.backends {
		steps, err := runBackend(ctx, name, registry, scenario, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		result.Backends = append(result.Backends, name)

		snapshot, err := Snapshot(scenario.Name, steps)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			result.Steps = steps
			baseline = snapshot
			continue
		}
		if string(snapshot) != string(baseline) {
			result.AddError(parityError(cfg.backends[0], name, result.Steps, steps))
		}
	}

	for _, msg := range EvaluateExpectations(scenario.Steps, result.Steps) {
		result.AddError(msg)
	}
	return result, nil
}

func compileSchemas(scenario *Scenario) (*compiler.Registry, error) {
	var types []ir.RecordType
	for _, path := range scenario.Schemas {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		compiled, err := compiler.CompileSource(path, src)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		types = append(types, compiled...)
	}
	if scenario.Schema != "" {
		compiled, err := compiler.CompileSource(scenario.Name+".schema", []byte(scenario.Schema))
		if err != nil {
			return nil, fmt.Errorf("compile inline schema: %w", err)
		}
		types = append(types, compiled...)
	}
	if len(types) == 0 {
		return nil, errors.New("scenario declares no record types")
	}
	return compiler.NewRegistry(types...)
}

func runBackend(ctx context.Context, name string, registry *compiler.Registry, scenario *Scenario, logger *slog.Logger) ([]StepResult, error) {
	b, err := openBackend(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer b.Close()

	if err := seed(ctx, b, registry, scenario.Seed); err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		sr := executeStep(ctx, step, registry, b, scenario.Strict, logger)
		logger.Info("step completed",
			"backend", name,
			"step", i,
			"name", step.Name,
			"type", step.Select,
			"rows", len(sr.IDs),
			"error", sr.Error,
		)
		results = append(results, sr)
	}
	return results, nil
}

func seed(ctx context.Context, w activerecord.Writer, registry *compiler.Registry, sets []SeedSet) error {
	for i, set := range sets {
		rt, ok := registry.Lookup(set.Type)
		if !ok {
			return fmt.Errorf("seed[%d]: unknown record type %q", i, set.Type)
		}
		objs := make([]ir.IRObject, len(set.Records))
		for j, rec := range set.Records {
			obj, err := ir.ObjectFromMap(rec)
			if err != nil {
				return fmt.Errorf("seed[%d] record %d: %w", i, j, err)
			}
			objs[j] = obj
		}
		gen := activerecord.NewSequenceGenerator(strings.ToLower(rt.Name))
		if _, err := activerecord.Load(ctx, w, rt, objs, gen); err != nil {
			return fmt.Errorf("seed[%d]: %w", i, err)
		}
	}
	return nil
}

// executeStep builds and runs one select. Builder and resolution failures
// are reported in the StepResult, not returned.
func executeStep(ctx context.Context, step Step, registry activerecord.SchemaRegistry, r activerecord.Resolver, strict bool, logger *slog.Logger) StepResult {
	op := step.Op
	if op == "" {
		op = OpGet
	}
	sr := StepResult{
		Name:    step.Name,
		Op:      op,
		Type:    step.Select,
		IDs:     []string{},
		Records: []ir.IRObject{},
	}

	records, err := runSelect(ctx, step, op, registry, r, strict, logger)
	if err != nil {
		sr.Error = errorCode(err)
		sr.Message = err.Error()
		return sr
	}
	for _, rec := range records {
		sr.IDs = append(sr.IDs, rec.ID())
		sr.Records = append(sr.Records, rec.Fields())
	}
	return sr
}

func runSelect(ctx context.Context, step Step, op string, registry activerecord.SchemaRegistry, r activerecord.Resolver, strict bool, logger *slog.Logger) ([]*activerecord.Record, error) {
	q, err := activerecord.NewSelect(step.Select, registry, r,
		activerecord.WithStrict(strict),
		activerecord.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if len(step.Where) > 0 {
		if _, err := q.Where(step.Where); err != nil {
			return nil, err
		}
	}
	if len(step.Order) > 0 {
		if _, err := q.Order(step.Order); err != nil {
			return nil, err
		}
	}
	if step.Limit != nil {
		if _, err := q.Limit(*step.Limit); err != nil {
			return nil, err
		}
	}

	switch op {
	case OpFirst, OpLast:
		var rec *activerecord.Record
		if op == OpFirst {
			rec, err = q.First(ctx)
		} else {
			rec, err = q.Last(ctx)
		}
		if err != nil {
			return nil, err
		}
		return []*activerecord.Record{rec}, nil
	case OpAll:
		return q.All(ctx)
	default:
		c, err := q.Get(ctx)
		if err != nil {
			return nil, err
		}
		return c.All(), nil
	}
}

// errorCode returns the QueryError code of err, or "ERROR".
func errorCode(err error) string {
	var qe *activerecord.QueryError
	if errors.As(err, &qe) {
		return string(qe.Code)
	}
	return "ERROR"
}

func parityError(base, other string, want, got []StepResult) string {
	for i := range want {
		if i >= len(got) {
			break
		}
		w, g := want[i], got[i]
		if w.Error != g.Error {
			return fmt.Sprintf("backend %s disagrees with %s at step %q: error %q, want %q", other, base, w.Name, g.Error, w.Error)
		}
		if strings.Join(w.IDs, ",") != strings.Join(g.IDs, ",") {
			return fmt.Sprintf("backend %s disagrees with %s at step %q: ids %v, want %v", other, base, w.Name, g.IDs, w.IDs)
		}
	}
	return fmt.Sprintf("backend %s disagrees with %s", other, base)
}
