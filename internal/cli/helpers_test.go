package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const blogSchema = `package schemas

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

record: Note: {
	fields: {
		id:   string
		body: string
	}
}
`

const blogPosts = `
- { id: 1, title: "Hello", status: published, created_at: 100 }
- { id: 2, title: "Drafting", status: draft, created_at: 300 }
- { id: 3, title: "Go tips", status: published, created_at: 200 }
- { id: 4, title: "Late news", status: published, created_at: 300 }
- { id: 5, title: "Guest column", status: published, created_at: 50, author: ada }
`

// isolate points the default config lookup at an empty home directory.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
}

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// schemasDir writes the blog schema into a fresh directory.
func schemasDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "schemas")
	writeFile(t, dir, "blog.cue", blogSchema)
	return dir
}

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// seededDB loads the blog posts into a fresh database for backend and
// returns the schemas dir and database path.
func seededDB(t *testing.T, backend string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	schemas := schemasDir(t)
	posts := writeFile(t, dir, "posts.yaml", blogPosts)

	db := filepath.Join(dir, "blog.db")
	if backend == "pebble" {
		db = filepath.Join(dir, "blog.kv")
	}

	_, _, err := execute(t, "--backend", backend, "load", "--db", db, "--schemas", schemas, "Post", posts)
	require.NoError(t, err)
	return schemas, db
}
