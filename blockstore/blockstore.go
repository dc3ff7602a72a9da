// Package blockstore lists and excises file blocks from a snapshot and
// manages the removed-file records that result.
//
// Block operations - path listing and exact-match removal.
//
// Information Hiding:
// - Locating framed units through the snapshot tokenizer
// - Byte-range splicing of the residual snapshot

package blockstore

import (
	"fmt"

	"github.com/richinex/replica/snapshot"
)

// ListBlocks returns the header paths of blob in blob order.
func ListBlocks(blob string) ([]string, error) {
	spans, err := snapshot.Tokenize(blob)
	if err != nil {
		return nil, fmt.Errorf("listing blocks: %w", err)
	}
	paths := make([]string, len(spans))
	for i, s := range spans {
		paths[i] = s.Path
	}
	return paths, nil
}

// RemoveBlock returns blob without the first framed unit whose header path
// equals target exactly. Surrounding text is preserved byte for byte.
func RemoveBlock(blob, target string) (string, error) {
	spans, err := snapshot.Tokenize(blob)
	if err != nil {
		return "", fmt.Errorf("removing %s: %w", target, err)
	}
	for _, s := range spans {
		if s.Path == target {
			return blob[:s.Start] + blob[s.End:], nil
		}
	}
	return "", &BlockNotFoundError{Path: target}
}

// Remove excises target from blob and tags the residual, producing the
// full text of a removed-file record.
func Remove(blob, target string) (string, error) {
	residual, err := RemoveBlock(blob, target)
	if err != nil {
		return "", err
	}
	return TagRemoved(residual, target)
}
