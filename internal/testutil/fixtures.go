// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/compiler"
	"github.com/roach88/recordselect/internal/ir"
)

// BlogSchema declares the Post and Author records used across tests.
const BlogSchema = `
record: Post: {
	key: "id"
	fields: {
		id:         int
		title:      string
		status:     string
		created_at: int
		author?:    string
	}
}

record: Author: {
	key: "handle"
	fields: {
		handle: string
		name:   string
	}
}
`

// Registry compiles BlogSchema into a registry.
func Registry(t testing.TB) *compiler.Registry {
	t.Helper()
	types, err := compiler.CompileSource("blog.cue", []byte(BlogSchema))
	require.NoError(t, err)
	reg, err := compiler.NewRegistry(types...)
	require.NoError(t, err)
	return reg
}

// PostType returns the compiled Post record type.
func PostType(t testing.TB) ir.RecordType {
	t.Helper()
	rt, ok := Registry(t).Lookup("Post")
	require.True(t, ok)
	return rt
}

// Post builds a Post field set.
func Post(id int64, title, status string, createdAt int64) ir.IRObject {
	return ir.IRObject{
		"id":         ir.IRInt(id),
		"title":      ir.IRString(title),
		"status":     ir.IRString(status),
		"created_at": ir.IRInt(createdAt),
	}
}

// Posts returns five posts in id order. Two published posts share
// created_at 300 so ties exercise the storage-natural tiebreaker, and
// post 5 has an author.
func Posts() []ir.IRObject {
	p5 := Post(5, "Guest column", "published", 50)
	p5["author"] = ir.IRString("ada")
	return []ir.IRObject{
		Post(1, "Hello", "published", 100),
		Post(2, "Drafting", "draft", 300),
		Post(3, "Go tips", "published", 200),
		Post(4, "Late news", "published", 300),
		p5,
	}
}

// PostIDs extracts the int id of each field set.
func PostIDs(t testing.TB, objs []ir.IRObject) []int64 {
	t.Helper()
	out := make([]int64, len(objs))
	for i, obj := range objs {
		id, ok := obj["id"].(ir.IRInt)
		require.True(t, ok, "result %d has no int id: %v", i, obj)
		out[i] = int64(id)
	}
	return out
}
