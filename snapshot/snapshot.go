// Package snapshot serializes a source tree into a single marker-delimited
// text artifact.
//
// Snapshotter - walks a root, applies skip rules and frames each file.
//
// Information Hiding:
// - Read failure substitution
// - Included path bookkeeping and digest computation

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/richinex/replica/logging"
	"github.com/richinex/replica/walker"
)

// SizeWarning is the total size above which callers should warn that the
// snapshot may be too large for a model context window.
const SizeWarning = 200 * 1024

// ErrRootNotDirectory is returned when Serialize is given a missing root or
// a regular file.
var ErrRootNotDirectory = errors.New("snapshot root is not a directory")

// Skipped records a file left out of the snapshot, or included with
// substituted content.
type Skipped struct {
	Path   string
	Reason string
}

// Result is the outcome of serializing a tree.
type Result struct {
	Blob       string
	Included   []string
	Skipped    []Skipped
	TotalBytes int64
	Digest     string
}

// Snapshotter serializes directory trees. The zero value uses a FastWalker
// with no skip rules.
type Snapshotter struct {
	Walker walker.Walker
	Rules  walker.SkipRules
	Logger *logging.Logger
}

// New returns a Snapshotter that prunes and filters with rules.
func New(rules walker.SkipRules, logger *logging.Logger) *Snapshotter {
	return &Snapshotter{
		Walker: &walker.FastWalker{Rules: rules, Logger: logger},
		Rules:  rules,
		Logger: logger,
	}
}

// Serialize walks root and frames every retained file in visitation order.
// Skipped files and unreadable files are recorded, never fatal.
func (s *Snapshotter) Serialize(ctx context.Context, root string) (Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.Get("snapshot")
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is a file", root)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrRootNotDirectory, err)
	}

	w := s.Walker
	if w == nil {
		w = &walker.FastWalker{Rules: s.Rules, Logger: logger}
	}

	var (
		res  Result
		blob strings.Builder
		seen = make(map[string]struct{})
	)

	err = w.Walk(ctx, root, func(e walker.Entry) bool {
		if e.IsDir {
			return !s.Rules.SkipDir(e.Name, e.RelPath)
		}

		if skip, reason := s.Rules.SkipFile(e.Name, e.RelPath); skip {
			res.Skipped = append(res.Skipped, Skipped{Path: e.RelPath, Reason: string(reason)})
			return true
		}

		content, readErr := readContent(e.Path)
		if readErr != nil {
			logger.Warn("unreadable file", "path", e.RelPath, "error", readErr)
			res.Skipped = append(res.Skipped, Skipped{
				Path:   e.RelPath,
				Reason: fmt.Sprintf("unreadable (%v)", readErr),
			})
		} else {
			res.TotalBytes += int64(len(content))
		}

		writeBlock(&blob, FileBlock{Path: e.RelPath, Content: content})
		if _, ok := seen[e.RelPath]; !ok {
			seen[e.RelPath] = struct{}{}
			res.Included = append(res.Included, e.RelPath)
		}
		return true
	})
	if err != nil {
		return Result{}, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(res.Included)
	res.Blob = blob.String()
	res.Digest = Digest(res.Blob)

	logger.Info("snapshot serialized",
		"root", root,
		"included", len(res.Included),
		"skipped", len(res.Skipped),
		"bytes", res.TotalBytes,
	)
	return res, nil
}

// readContent returns the file text, or the unreadable placeholder and the
// underlying cause.
func readContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), nil
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return fmt.Sprintf("[UNREADABLE FILE: %v]", err), err
}

// Digest returns the hex xxh3-128 fingerprint of blob.
func Digest(blob string) string {
	return fmt.Sprintf("%x", xxh3.HashString128(blob).Bytes())
}

// WriteFile writes blob to path, creating parent directories.
func WriteFile(path, blob string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(blob), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
