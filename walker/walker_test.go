package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func visitAll(t *testing.T, w Walker, root string) []string {
	t.Helper()
	var got []string
	err := w.Walk(context.Background(), root, func(e Entry) bool {
		if e.IsDir {
			got = append(got, e.RelPath+"/")
		} else {
			got = append(got, e.RelPath)
		}
		return true
	})
	require.NoError(t, err)
	return got
}

func TestFastWalkerCanonicalOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"z.js":           "z",
		"a.js":           "a",
		"src/b.js":       "b",
		"src/lib/c.js":   "c",
		"src/a.js":       "a",
		"docs/readme.md": "r",
	})

	got := visitAll(t, &FastWalker{}, root)
	want := []string{
		"docs/", "docs/readme.md",
		"src/", "src/lib/", "src/lib/c.js", "src/a.js", "src/b.js",
		"a.js", "z.js",
	}
	assert.Equal(t, want, got)
}

func TestFastWalkerIsDeterministic(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for _, d := range []string{"a", "b", "c", "d"} {
		for _, f := range []string{"1.js", "2.js", "3.js"} {
			files[d+"/"+f] = f
			files[d+"/nested/"+f] = f
		}
	}
	writeTree(t, root, files)

	w := &FastWalker{}
	first := visitAll(t, w, root)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, visitAll(t, w, root))
	}
}

func TestFastWalkerPrunesByRules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.js":                  "x",
		"node_modules/pkg/index.js": "x",
		"build/out.js":              "x",
		"src/app.js":                "x",
	})

	got := visitAll(t, &FastWalker{Rules: DefaultSkipRules()}, root)
	assert.Equal(t, []string{"src/", "src/app.js", "index.js"}, got)
}

func TestFastWalkerCallbackPrunes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep/a.js":     "a",
		"drop/b.js":     "b",
		"drop/sub/c.js": "c",
		"dropped.js":    "d",
	})

	var got []string
	err := (&FastWalker{}).Walk(context.Background(), root, func(e Entry) bool {
		got = append(got, e.RelPath)
		return e.RelPath != "drop"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"drop", "keep", "keep/a.js", "dropped.js"}, got)
}

func TestFastWalkerRootErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.js")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := (&FastWalker{}).Walk(context.Background(), file, func(Entry) bool { return true })
	require.ErrorIs(t, err, ErrNotDirectory)

	err = (&FastWalker{}).Walk(context.Background(), filepath.Join(root, "missing"), func(Entry) bool { return true })
	require.Error(t, err)
}

func TestFastWalkerCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&FastWalker{}).Walk(ctx, root, func(Entry) bool { return true })
	require.ErrorIs(t, err, context.Canceled)
}

func TestFastWalkerReportsSize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "12345"})

	var size int64
	err := (&FastWalker{}).Walk(context.Background(), root, func(e Entry) bool {
		size = e.Size
		return true
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)
}
