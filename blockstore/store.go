// Record store - flat-file persistence for removed-file records.
//
// Information Hiding:
// - Directory layout and record name resolution
// - Per-entry error collection when listing

package blockstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinex/replica/logging"
)

// Store keeps removed-file records as files in Dir.
type Store struct {
	Dir    string
	Logger *logging.Logger
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, Logger: logging.Get("blockstore")}
}

// RecordInfo describes one listed record. Err is set when the record could
// not be read or parsed; Record is valid otherwise.
type RecordInfo struct {
	Name   string
	Path   string
	Record Record
	Err    error
}

// Save writes recordText under the name derived from target, replacing any
// existing record of that name, and returns the written path.
func (s *Store) Save(target, recordText string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating record directory: %w", err)
	}
	path := filepath.Join(s.Dir, RecordFileName(target))
	if err := os.WriteFile(path, []byte(recordText), 0644); err != nil {
		return "", fmt.Errorf("writing record %s: %w", path, err)
	}
	s.logger().Info("record saved", "target", target, "path", path)
	return path, nil
}

// Load reads and parses a record. name is either a record file name in Dir
// or the snapshot path of a removed file.
func (s *Store) Load(name string) (Record, error) {
	fileName := s.resolve(name)
	data, err := os.ReadFile(filepath.Join(s.Dir, fileName))
	if err != nil {
		return Record{}, fmt.Errorf("reading record %s: %w", fileName, err)
	}
	return ParseRecord(fileName, string(data))
}

// List returns every record in Dir sorted by file name. A missing directory
// yields an empty list.
func (s *Store) List() ([]RecordInfo, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var infos []RecordInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		info := RecordInfo{Name: e.Name(), Path: filepath.Join(s.Dir, e.Name())}
		data, err := os.ReadFile(info.Path)
		if err != nil {
			info.Err = err
		} else {
			info.Record, info.Err = ParseRecord(e.Name(), string(data))
		}
		if info.Err != nil {
			s.logger().Warn("unusable record", "name", e.Name(), "error", info.Err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Store) resolve(name string) string {
	base := filepath.Base(name)
	if strings.HasSuffix(base, RecordSuffix) {
		return base
	}
	if strings.HasSuffix(base, ".txt") {
		if _, err := os.Stat(filepath.Join(s.Dir, base)); err == nil {
			return base
		}
	}
	return RecordFileName(filepath.ToSlash(name))
}

func (s *Store) logger() *logging.Logger {
	if s.Logger == nil {
		return logging.Get("blockstore")
	}
	return s.Logger
}
