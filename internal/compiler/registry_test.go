package compiler

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/ir"
)

func TestRegistry(t *testing.T) {
	comment := ir.RecordType{Name: "Comment", Fields: []ir.Field{{Name: "id", Type: ir.FieldInt}}}
	r, err := NewRegistry(postType(), comment)
	require.NoError(t, err)

	rt, ok := r.Lookup("Post")
	require.True(t, ok)
	assert.Equal(t, "Post", rt.Name)

	_, ok = r.Lookup("Missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"Post", "Comment"}, r.Names())
	assert.Len(t, r.Types(), 2)
}

func TestRegistryRejects(t *testing.T) {
	r, err := NewRegistry(postType())
	require.NoError(t, err)

	err = r.Register(postType())
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrDuplicateName, verr.Code)

	err = r.Register(ir.RecordType{Name: "Empty"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrRecordNoFields, verr.Code)

	_, err = NewRegistry(postType(), postType())
	assert.Error(t, err)
}

func TestRegistryConcurrentLookup(t *testing.T) {
	r, err := NewRegistry(postType())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Lookup("Post")
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.cue"), []byte(`package schemas

record: Post: {
	key: "id"
	fields: {
		id:     int
		title:  string
		status: string
	}
}
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tag.cue"), []byte(`package schemas

record: Tag: fields: { id: string }
`), 0644))

	types, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, types, 2)

	names := []string{types[0].Name, types[1].Name}
	assert.ElementsMatch(t, []string{"Post", "Tag"}, names)
}

func TestLoadDirConflict(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte(`package schemas
record: Post: key: "id"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.cue"), []byte(`package schemas
record: Post: key: "slug"
`), 0644))

	_, err := LoadDir(dir)
	assert.Error(t, err)
}
