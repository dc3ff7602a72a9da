// Package walker enumerates a source tree in a deterministic order.
//
// Directory walker - concurrent enumeration with ordered replay.
//
// Information Hiding:
// - fastwalk concurrency and its callback scheduling
// - Symlink resolution for regular files
// - Canonical ordering of collected entries

package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/richinex/replica/logging"
)

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("walk root is not a directory")

// Entry is one visited directory or regular file.
type Entry struct {
	Path    string // absolute path
	RelPath string // slash-separated, relative to the walk root
	Name    string
	IsDir   bool
	Size    int64
}

// WalkFunc is called once per entry in canonical order. Returning false for
// a directory prunes its subtree; the result is ignored for files.
type WalkFunc func(Entry) bool

// Walker visits a tree rooted at root.
type Walker interface {
	Walk(ctx context.Context, root string, fn WalkFunc) error
}

// FastWalker collects entries with fastwalk, pruning directories by Rules,
// then replays them in pre-order with directories before files at every
// level and names in lexical order.
type FastWalker struct {
	Rules  SkipRules
	Logger *logging.Logger
}

var _ Walker = (*FastWalker)(nil)

// Walk implements Walker. Unreadable entries are logged and skipped.
func (w *FastWalker) Walk(ctx context.Context, root string, fn WalkFunc) error {
	logger := w.Logger
	if logger == nil {
		logger = logging.Get("walker")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	entries, err := w.collect(ctx, abs, logger)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})

	var pruned string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pruned != "" && strings.HasPrefix(e.RelPath, pruned) {
			continue
		}
		pruned = ""
		if !fn(e) && e.IsDir {
			pruned = e.RelPath + "/"
		}
	}
	return nil
}

func (w *FastWalker) collect(ctx context.Context, abs string, logger *logging.Logger) ([]Entry, error) {
	var (
		mu      sync.Mutex
		entries []Entry
	)

	conf := fastwalk.Config{
		Follow: false,
	}

	err := fastwalk.Walk(&conf, abs, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			logger.Warn("skipping unreadable entry", "path", path, "error", walkErr)
			if d != nil && d.IsDir() && path != abs {
				return filepath.SkipDir
			}
			return nil
		}
		if path == abs {
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			logger.Warn("skipping entry outside root", "path", path, "error", err)
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if w.Rules.SkipDir(d.Name(), rel) {
				logger.Debug("pruned directory", "path", rel)
				return filepath.SkipDir
			}
			mu.Lock()
			entries = append(entries, Entry{Path: path, RelPath: rel, Name: d.Name(), IsDir: true})
			mu.Unlock()
			return nil
		}

		size, ok := regularFileSize(path, d)
		if !ok {
			logger.Debug("ignoring non-regular file", "path", rel)
			return nil
		}
		mu.Lock()
		entries = append(entries, Entry{Path: path, RelPath: rel, Name: d.Name(), Size: size})
		mu.Unlock()
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("walking %s: %w", abs, err)
	}
	return entries, nil
}

// regularFileSize returns the size of a regular file, following a symlink
// when it resolves to one. Symlinked directories are not descended.
func regularFileSize(path string, d fs.DirEntry) (int64, bool) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return 0, false
		}
		return info.Size(), true
	}
	if !d.Type().IsRegular() {
		return 0, false
	}
	info, err := d.Info()
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

// entryLess orders entries in pre-order: a parent precedes its children, and
// at the first differing component a directory sorts before a file.
func entryLess(a, b Entry) bool {
	as := strings.Split(a.RelPath, "/")
	bs := strings.Split(b.RelPath, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		aDir := i < len(as)-1 || a.IsDir
		bDir := i < len(bs)-1 || b.IsDir
		if aDir != bDir {
			return aDir
		}
		return as[i] < bs[i]
	}
	return len(as) < len(bs)
}
