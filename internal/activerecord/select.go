package activerecord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/queryir"
)

// Resolver runs a frozen query against storage.
// A nil error with an empty slice means zero rows; any storage failure
// must be reported as an error. Implemented by store.Store and kvstore.Store.
type Resolver interface {
	Resolve(ctx context.Context, sel queryir.Select) ([]ir.IRObject, error)
}

// SchemaRegistry supplies record type declarations.
// Implemented by compiler.Registry.
type SchemaRegistry interface {
	Lookup(name string) (ir.RecordType, bool)
}

// Select accumulates WHERE, ORDER and LIMIT state for one record type and
// resolves it on a terminal call.
//
// Where, Order and their variants append; Limit overwrites. Each returns the
// same builder so calls chain. A failed call returns an error and leaves the
// accumulated state untouched.
//
// Thread-safety: a Select is not safe for concurrent mutation. Terminal
// calls read a copy of the state, so concurrent Get/First/Last on a builder
// nobody is mutating are fine. Use Clone for per-goroutine builders.
type Select struct {
	schema   ir.RecordType
	resolver Resolver
	state    queryir.Select

	strict    bool
	orderMode queryir.OrderMode
	logger    *slog.Logger
}

// Option configures a Select.
type Option func(*Select)

// WithStrict rejects WHERE and ORDER fields the schema does not declare.
func WithStrict(strict bool) Option {
	return func(s *Select) { s.strict = strict }
}

// WithOrderMode selects how Order treats unrecognised direction tokens.
// Default: queryir.OrderStrict.
func WithOrderMode(mode queryir.OrderMode) Option {
	return func(s *Select) { s.orderMode = mode }
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Select) { s.logger = logger }
}

// NewSelect creates a builder bound to typeName.
// Fails with an UnknownType error when typeName is empty or not registered.
func NewSelect(typeName string, registry SchemaRegistry, resolver Resolver, opts ...Option) (*Select, error) {
	if typeName == "" {
		return nil, newUnknownType(typeName)
	}
	rt, ok := registry.Lookup(typeName)
	if !ok {
		return nil, newUnknownType(typeName)
	}

	s := &Select{
		schema:    rt,
		resolver:  resolver,
		state:     queryir.Select{From: typeName},
		orderMode: queryir.OrderStrict,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Type returns the record type name the builder is bound to.
func (s *Select) Type() string { return s.state.From }

// Where parses entries and appends the resulting conditions.
//
// Each entry has "field", optional "op" (default equals), "value" (absent
// for is-null and is-not-null) and optional "conjunction" ("and"/"or").
func (s *Select) Where(entries []map[string]any) (*Select, error) {
	conds, err := queryir.ParseWhere(entries)
	if err != nil {
		return s, newInvalidCondition(s.state.From, conditionField(err), err)
	}
	return s.WhereConditions(conds...)
}

// WhereConditions appends conditions built with queryir.NewCondition.
func (s *Select) WhereConditions(conds ...queryir.Condition) (*Select, error) {
	for i, c := range conds {
		if c.IsZero() {
			err := &queryir.ConditionError{Index: i, Message: "condition was not built by NewCondition"}
			return s, newInvalidCondition(s.state.From, "", err)
		}
		if err := s.checkField(i, c.Field()); err != nil {
			return s, err
		}
	}
	s.state.Where = append(s.state.Where, conds...)
	return s, nil
}

// Order parses a field to direction mapping and appends the clauses.
// Mapping order is significant: earlier fields are primary sort keys.
func (s *Select) Order(m queryir.OrderMap) (*Select, error) {
	clauses, err := queryir.ParseOrder(m, s.orderMode)
	if err != nil {
		return s, newInvalidCondition(s.state.From, conditionField(err), err)
	}
	return s.OrderBy(clauses...)
}

// OrderBy appends clauses built with queryir.NewOrderClause.
func (s *Select) OrderBy(clauses ...queryir.OrderClause) (*Select, error) {
	for i, o := range clauses {
		if o.Field() == "" {
			err := &queryir.ConditionError{Index: i, Message: "order clause was not built by NewOrderClause"}
			return s, newInvalidCondition(s.state.From, "", err)
		}
		if err := s.checkField(i, o.Field()); err != nil {
			return s, err
		}
	}
	s.state.Order = append(s.state.Order, clauses...)
	return s, nil
}

// Limit caps the number of records. The last call wins.
func (s *Select) Limit(n int) (*Select, error) {
	if n <= 0 {
		return s, newInvalidLimit(s.state.From, n)
	}
	s.state.Limit = n
	return s, nil
}

func (s *Select) checkField(i int, field string) error {
	if !s.strict || s.schema.HasField(field) {
		return nil
	}
	err := &queryir.ConditionError{Index: i, Field: field, Message: "field is not declared by record " + s.schema.Name}
	return newInvalidCondition(s.state.From, field, err)
}

// State returns a copy of the accumulated query state.
func (s *Select) State() queryir.Select {
	st := s.state
	st.Where = slices.Clone(s.state.Where)
	st.Order = slices.Clone(s.state.Order)
	return st
}

// Clone returns an independent builder with a copy of the state.
func (s *Select) Clone() *Select {
	c := *s
	c.state = s.State()
	return &c
}

// Get resolves the current state into a fresh Collection.
// Zero matching records is an empty Collection, not an error.
func (s *Select) Get(ctx context.Context) (*Collection, error) {
	records, err := s.resolve(ctx, s.State())
	if err != nil {
		return nil, err
	}
	return newCollection(s.state.From, records), nil
}

// All resolves the current state and returns the records in order.
func (s *Select) All(ctx context.Context) ([]*Record, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.All(), nil
}

// First resolves the state with an effective limit of 1.
// Fails with an EmptyResult error when nothing matches.
func (s *Select) First(ctx context.Context) (*Record, error) {
	st := s.State()
	st.Limit = 1
	return s.single(ctx, st, "first")
}

// Last is First against the inverted ORDER: every direction is flipped and
// the storage-natural tiebreaker runs backward. With no ORDER it returns the
// final record in storage-natural order.
func (s *Select) Last(ctx context.Context) (*Record, error) {
	st := s.State()
	for i, o := range st.Order {
		st.Order[i] = o.Inverted()
	}
	st.Backward = true
	st.Limit = 1
	return s.single(ctx, st, "last")
}

func (s *Select) single(ctx context.Context, st queryir.Select, op string) (*Record, error) {
	records, err := s.resolve(ctx, st)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, newEmptyResult(st.From, op)
	}
	return records[0], nil
}

func (s *Select) resolve(ctx context.Context, st queryir.Select) ([]*Record, error) {
	s.logger.Debug("resolve",
		"type", st.From,
		"conditions", len(st.Where),
		"order", len(st.Order),
		"limit", st.Limit,
		"backward", st.Backward)

	raw, err := s.resolver.Resolve(ctx, st)
	if err != nil {
		s.logger.Debug("resolve failed", "type", st.From, "error", err)
		return nil, newResolutionError(st.From, err)
	}
	if st.Limit > 0 && len(raw) > st.Limit {
		raw = raw[:st.Limit]
	}

	records := make([]*Record, 0, len(raw))
	for i, obj := range raw {
		rec, err := newRecord(s.schema, obj)
		if err != nil {
			return nil, newResolutionError(st.From, fmt.Errorf("row %d: %w", i, err))
		}
		records = append(records, rec)
	}

	s.logger.Debug("resolved", "type", st.From, "rows", len(records))
	return records, nil
}

// conditionField extracts the offending field from a queryir error.
func conditionField(err error) string {
	var ce *queryir.ConditionError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}
