package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/replica/walker"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"index.js":           "console.log(1)\n",
		"src/app.jsx":        "export default App;",
		"src/util/format.ts": "export const f = () => 1;",
		"style.css":          "",
	}
	writeTree(t, root, files)

	s := New(walker.DefaultSkipRules(), nil)
	res, err := s.Serialize(context.Background(), root)
	require.NoError(t, err)

	blocks, err := Decode(res.Blob)
	require.NoError(t, err)
	require.Len(t, blocks, len(files))
	for _, b := range blocks {
		assert.Equal(t, files[b.Path], b.Content, b.Path)
	}

	assert.Equal(t, []string{"index.js", "src/app.jsx", "src/util/format.ts", "style.css"}, res.Included)
	assert.EqualValues(t, 15+19+25, res.TotalBytes)

	order := make([]string, len(blocks))
	for i, b := range blocks {
		order[i] = b.Path
	}
	assert.Equal(t, []string{"src/util/format.ts", "src/app.jsx", "index.js", "style.css"}, order)
}

func TestSerializeIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.js":     "a",
		"b.js":     "b",
		"sub/a.js": "sub a",
		"sub/c.py": "print('c')",
	})

	s := New(walker.DefaultSkipRules(), nil)
	first, err := s.Serialize(context.Background(), root)
	require.NoError(t, err)
	second, err := s.Serialize(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first.Blob, second.Blob)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Len(t, first.Digest, 32)
}

func TestSerializeRecordsSkips(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.js":            "x",
		".env":                "SECRET=1",
		"logo.png":            "png",
		"README.md":           "# readme",
		"node_modules/m/i.js": "module",
	})

	res, err := New(walker.DefaultSkipRules(), nil).Serialize(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"index.js"}, res.Included)
	reasons := map[string]string{}
	for _, sk := range res.Skipped {
		reasons[sk.Path] = sk.Reason
	}
	assert.Equal(t, map[string]string{
		".env":      string(walker.ReasonHidden),
		"logo.png":  string(walker.ReasonSkipListed),
		"README.md": string(walker.ReasonNotIncluded),
	}, reasons)
	assert.NotContains(t, res.Blob, "node_modules")
}

func TestSerializeUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.js": "ok", "locked.js": "secret"})
	require.NoError(t, os.Chmod(filepath.Join(root, "locked.js"), 0))

	res, err := New(walker.DefaultSkipRules(), nil).Serialize(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"locked.js", "ok.js"}, res.Included)
	assert.EqualValues(t, 2, res.TotalBytes)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "locked.js", res.Skipped[0].Path)
	assert.Contains(t, res.Skipped[0].Reason, "unreadable (")

	blocks, err := Decode(res.Blob)
	require.NoError(t, err)
	assert.Contains(t, blocks[0].Content, "[UNREADABLE FILE: ")
}

func TestSerializeRootErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.js")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0644))

	s := &Snapshotter{}
	_, err := s.Serialize(context.Background(), file)
	require.ErrorIs(t, err, ErrRootNotDirectory)

	_, err = s.Serialize(context.Background(), filepath.Join(root, "missing"))
	require.ErrorIs(t, err, ErrRootNotDirectory)
}

func TestZeroSnapshotterIncludesEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.md": "n", "a.js": "a"})

	res, err := (&Snapshotter{}).Serialize(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "notes.md"}, res.Included)
	assert.Empty(t, res.Skipped)
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parsedCodebase", "original", "codebase_parsed.txt")
	require.NoError(t, WriteFile(path, "blob"))
	require.NoError(t, WriteFile(path, "blob2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "blob2", string(data))
}
