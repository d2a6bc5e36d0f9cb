package activerecord

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/kvstore"
	"github.com/roach88/recordselect/internal/queryir"
	"github.com/roach88/recordselect/internal/store"
	"github.com/roach88/recordselect/internal/testutil"
)

type backend interface {
	Resolver
	Writer
}

// backends opens an empty SQLite store and an empty pebble store.
func backends(t *testing.T) map[string]backend {
	t.Helper()

	sqlStore, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	kv, err := kvstore.Open("kv", kvstore.WithFS(vfs.NewMem()))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	return map[string]backend{"sqlite": sqlStore, "pebble": kv}
}

// forEachBackend runs fn against each backend seeded with testutil.Posts.
func forEachBackend(t *testing.T, fn func(t *testing.T, reg SchemaRegistry, b backend)) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			reg := testutil.Registry(t)
			rt, _ := reg.Lookup("Post")
			_, err := Load(context.Background(), b, rt, testutil.Posts(), nil)
			require.NoError(t, err)
			fn(t, reg, b)
		})
	}
}

func mustSelect(t *testing.T, reg SchemaRegistry, r Resolver, opts ...Option) *Select {
	t.Helper()
	s, err := NewSelect("Post", reg, r, opts...)
	require.NoError(t, err)
	return s
}

func recordIDs(records []*Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

// stubResolver returns canned rows or an error and records the last query.
type stubResolver struct {
	rows []ir.IRObject
	err  error
	last queryir.Select
}

func (r *stubResolver) Resolve(_ context.Context, sel queryir.Select) ([]ir.IRObject, error) {
	r.last = sel
	return r.rows, r.err
}
