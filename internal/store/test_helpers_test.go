package store

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/queryir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPost creates a Post row keyed by its integer id.
func createTestPost(id int64, title, status string, createdAt int64) ir.Row {
	return ir.Row{
		Type: "Post",
		ID:   strconv.FormatInt(id, 10),
		Fields: ir.IRObject{
			"id":         ir.IRInt(id),
			"title":      ir.IRString(title),
			"status":     ir.IRString(status),
			"created_at": ir.IRInt(createdAt),
		},
	}
}

// seedPosts writes four posts in id order.
func seedPosts(t *testing.T, s *Store) {
	t.Helper()
	rows := []ir.Row{
		createTestPost(1, "Hello", "published", 100),
		createTestPost(2, "Drafting", "draft", 300),
		createTestPost(3, "Go tips", "published", 200),
		createTestPost(4, "Late news", "published", 300),
	}
	if err := s.PutBatch(context.Background(), rows); err != nil {
		t.Fatalf("PutBatch() failed: %v", err)
	}
}

// mustSelect builds a Select from loose where/order input.
func mustSelect(t *testing.T, from string, where []map[string]any, order queryir.OrderMap, limit int) queryir.Select {
	t.Helper()
	conds, err := queryir.ParseWhere(where)
	if err != nil {
		t.Fatalf("ParseWhere() failed: %v", err)
	}
	clauses, err := queryir.ParseOrder(order, queryir.OrderStrict)
	if err != nil {
		t.Fatalf("ParseOrder() failed: %v", err)
	}
	return queryir.Select{From: from, Where: conds, Order: clauses, Limit: limit}
}

// ids extracts the id field of each result.
func ids(t *testing.T, objs []ir.IRObject) []int64 {
	t.Helper()
	out := make([]int64, len(objs))
	for i, obj := range objs {
		id, ok := obj["id"].(ir.IRInt)
		if !ok {
			t.Fatalf("result %d has no int id: %v", i, obj)
		}
		out[i] = int64(id)
	}
	return out
}
