package activerecord

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/compiler"
	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/testutil"
)

type recordingWriter struct {
	rows  []ir.Row
	types []string
	err   error
}

func (w *recordingWriter) PutBatch(_ context.Context, rows []ir.Row) error {
	if w.err != nil {
		return w.err
	}
	w.rows = append(w.rows, rows...)
	return nil
}

func (w *recordingWriter) SaveType(_ context.Context, rt ir.RecordType) error {
	w.types = append(w.types, rt.Name)
	return nil
}

func TestLoad_AssignsStringKeys(t *testing.T) {
	reg := testutil.Registry(t)
	author, _ := reg.Lookup("Author")
	w := &recordingWriter{}

	n, err := Load(context.Background(), w, author, []ir.IRObject{
		{"name": ir.IRString("Ada")},
		{"handle": ir.IRString("grace"), "name": ir.IRString("Grace")},
		{"handle": ir.IRNull{}, "name": ir.IRString("Linus")},
	}, NewFixedGenerator("gen-1", "gen-2"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, w.rows, 3)
	assert.Equal(t, "gen-1", w.rows[0].ID)
	assert.Equal(t, ir.IRString("gen-1"), w.rows[0].Fields["handle"])
	assert.Equal(t, "grace", w.rows[1].ID)
	assert.Equal(t, "gen-2", w.rows[2].ID)
	assert.Equal(t, []string{"Author"}, w.types)
}

func TestLoad_NoGenerator(t *testing.T) {
	author, _ := testutil.Registry(t).Lookup("Author")
	_, err := Load(context.Background(), &recordingWriter{}, author, []ir.IRObject{{"name": ir.IRString("Ada")}}, nil)
	assert.ErrorIs(t, err, errNoGenerator)
}

func TestLoad_IntKeyNeverGenerated(t *testing.T) {
	rt := testutil.PostType(t)
	obj := testutil.Post(1, "a", "draft", 1)
	delete(obj, "id")

	w := &recordingWriter{}
	_, err := Load(context.Background(), w, rt, []ir.IRObject{obj}, NewSequenceGenerator(""))

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, compiler.ErrMissingField, le.Errors[0].Code)
	assert.Empty(t, w.rows)
}

func TestLoad_InvalidRecordWritesNothing(t *testing.T) {
	rt := testutil.PostType(t)
	bad := testutil.Post(2, "b", "draft", 2)
	bad["created_at"] = ir.IRString("yesterday")

	w := &recordingWriter{}
	_, err := Load(context.Background(), w, rt, []ir.IRObject{testutil.Post(1, "a", "draft", 1), bad}, nil)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 1, le.Index)
	assert.Equal(t, "created_at", le.Errors[0].Field)
	assert.Contains(t, err.Error(), "Post record 1")
	assert.Empty(t, w.rows)
	assert.Empty(t, w.types)
}

func TestLoad_WriterError(t *testing.T) {
	cause := errors.New("read-only")
	_, err := Load(context.Background(), &recordingWriter{err: cause}, testutil.PostType(t), testutil.Posts(), nil)
	assert.ErrorIs(t, err, cause)
}
