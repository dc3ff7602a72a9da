package blockstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/replica/snapshot"
)

var sample = []snapshot.FileBlock{
	{Path: "a.js", Content: "const a = 1;"},
	{Path: "b.js", Content: "const b = 2;\n"},
	{Path: "sub/a.js", Content: "const subA = 3;"},
}

func TestListBlocks(t *testing.T) {
	paths, err := ListBlocks(snapshot.Encode(sample))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js", "sub/a.js"}, paths)
}

func TestRemoveBlockExactMatch(t *testing.T) {
	blob := snapshot.Encode(sample)

	tests := []struct {
		target string
		keep   []snapshot.FileBlock
	}{
		{"a.js", []snapshot.FileBlock{sample[1], sample[2]}},
		{"b.js", []snapshot.FileBlock{sample[0], sample[2]}},
		{"sub/a.js", []snapshot.FileBlock{sample[0], sample[1]}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := RemoveBlock(blob, tt.target)
			require.NoError(t, err)
			assert.Equal(t, snapshot.Encode(tt.keep), got)
		})
	}
}

func TestRemoveBlockNotFoundLeavesInput(t *testing.T) {
	blob := snapshot.Encode(sample)
	before := snapshot.Digest(blob)

	for _, target := range []string{"c.js", "a", "sub/", "A.js"} {
		got, err := RemoveBlock(blob, target)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBlockNotFound))
		var nf *BlockNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, target, nf.Path)
		assert.Empty(t, got)
	}
	assert.Equal(t, before, snapshot.Digest(blob))
}

func TestRemoveBlockFirstDuplicateOnly(t *testing.T) {
	blocks := []snapshot.FileBlock{
		{Path: "dup.js", Content: "first"},
		{Path: "dup.js", Content: "second"},
	}
	got, err := RemoveBlock(snapshot.Encode(blocks), "dup.js")
	require.NoError(t, err)
	assert.Equal(t, snapshot.EncodeBlock(blocks[1]), got)
}

func TestRemoveBlockIgnoresRegexMetacharacters(t *testing.T) {
	blocks := []snapshot.FileBlock{
		{Path: "a+b.js", Content: "x"},
		{Path: "aab.js", Content: "y"},
	}
	got, err := RemoveBlock(snapshot.Encode(blocks), "a+b.js")
	require.NoError(t, err)
	assert.Equal(t, snapshot.EncodeBlock(blocks[1]), got)

	_, err = RemoveBlock(snapshot.Encode(blocks), "a.b.js")
	require.ErrorIs(t, err, ErrBlockNotFound)
}

func TestRemoveBlockMalformed(t *testing.T) {
	_, err := RemoveBlock("\n"+snapshot.StartMarker+"\nFILE: a.js\n", "a.js")
	require.ErrorIs(t, err, snapshot.ErrUnterminatedBlock)
}

func TestRemoveTagsResidual(t *testing.T) {
	text, err := Remove(snapshot.Encode(sample), "sub/a.js")
	require.NoError(t, err)

	rec, err := ParseRecord("a_modified_codebase.txt", text)
	require.NoError(t, err)
	assert.Equal(t, "a.js", rec.Filename())
	assert.Equal(t, "sub/a.js", rec.Path())

	paths, err := ListBlocks(rec.Residual)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js"}, paths)
}
