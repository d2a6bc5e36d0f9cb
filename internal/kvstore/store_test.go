package kvstore

import (
	"context"
	"strconv"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/queryir"
)

func openMem(t *testing.T, fs vfs.FS) *Store {
	t.Helper()
	s, err := Open("db", WithFS(fs))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func post(id int64, title, status string, createdAt int64) ir.Row {
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

func seed(t *testing.T, s *Store) {
	t.Helper()
	err := s.PutBatch(context.Background(), []ir.Row{
		post(1, "Hello", "published", 100),
		post(2, "Drafting", "draft", 300),
		post(3, "Go tips", "published", 200),
		post(4, "Late news", "published", 300),
	})
	require.NoError(t, err)
}

func rowIDs(rows []ir.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestOpen_ResumesSeq(t *testing.T) {
	fs := vfs.NewMem()
	ctx := context.Background()

	s, err := Open("db", WithFS(fs))
	require.NoError(t, err)
	seq, err := s.Put(ctx, post(1, "a", "draft", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	require.NoError(t, s.Close())

	s, err = Open("db", WithFS(fs))
	require.NoError(t, err)
	defer s.Close()
	seq, err = s.Put(ctx, post(2, "b", "draft", 2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestClose_Idempotent(t *testing.T) {
	s, err := Open("db", WithFS(vfs.NewMem()))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Put(context.Background(), post(1, "a", "draft", 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Resolve(context.Background(), queryir.Select{From: "Post"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPut_ReplaceKeepsSeq(t *testing.T) {
	s := openMem(t, vfs.NewMem())
	ctx := context.Background()
	seed(t, s)

	seq, err := s.Put(ctx, post(1, "Hello again", "draft", 100))
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	row, err := s.Get(ctx, "Post", "1")
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("Hello again"), row.Fields["title"])

	rows, err := s.ResolveRows(ctx, queryir.Select{From: "Post"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, rowIDs(rows))
}

func TestPutBatch_DuplicateInBatch(t *testing.T) {
	s := openMem(t, vfs.NewMem())
	ctx := context.Background()

	err := s.PutBatch(ctx, []ir.Row{
		post(1, "first", "draft", 1),
		post(2, "other", "draft", 2),
		post(1, "second", "draft", 1),
	})
	require.NoError(t, err)

	rows, err := s.ResolveRows(ctx, queryir.Select{From: "Post"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ir.IRString("second"), rows[0].Fields["title"])
	assert.Equal(t, int64(1), rows[0].Seq)
}

func TestPut_Rejects(t *testing.T) {
	s := openMem(t, vfs.NewMem())
	ctx := context.Background()

	_, err := s.Put(ctx, ir.Row{Type: "a/b", ID: "1", Fields: ir.IRObject{}})
	assert.Error(t, err)
	_, err = s.Put(ctx, ir.Row{Type: "Post", Fields: ir.IRObject{}})
	assert.Error(t, err)
	_, err = s.Put(ctx, ir.Row{Type: "", ID: "1"})
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := openMem(t, vfs.NewMem())
	ctx := context.Background()
	seed(t, s)

	ok, err := s.Delete(ctx, "Post", "2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "Post", "2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "Post", "2")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Count(ctx, queryir.Select{From: "Post"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTypes(t *testing.T) {
	s := openMem(t, vfs.NewMem())
	ctx := context.Background()

	comment := ir.RecordType{Name: "Comment", Key: "id", Fields: []ir.Field{{Name: "id", Type: ir.FieldInt}}}
	postType := ir.RecordType{Name: "Post", Key: "id", Fields: []ir.Field{{Name: "id", Type: ir.FieldInt}, {Name: "title", Type: ir.FieldString}}}
	require.NoError(t, s.SaveType(ctx, postType))
	require.NoError(t, s.SaveType(ctx, comment))

	types, err := s.Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ir.RecordType{comment, postType}, types)
}
