package blockstore

import (
	"errors"
	"fmt"
)

// ErrBlockNotFound is matched by *BlockNotFoundError via errors.Is.
var ErrBlockNotFound = errors.New("file block not found")

// BlockNotFoundError reports that no framed unit declares Path.
type BlockNotFoundError struct {
	Path string
}

func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("file block not found for: %s", e.Path)
}

func (e *BlockNotFoundError) Is(target error) bool {
	return target == ErrBlockNotFound
}

// MetadataMissingError reports a record without a leading metadata header.
type MetadataMissingError struct {
	Record string
}

func (e *MetadataMissingError) Error() string {
	return fmt.Sprintf("no metadata header in record %s", e.Record)
}

// MetadataParseError reports a metadata header that is not valid JSON or
// lacks the removed file's name or path.
type MetadataParseError struct {
	Record string
	Err    error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("invalid metadata in record %s: %v", e.Record, e.Err)
}

func (e *MetadataParseError) Unwrap() error {
	return e.Err
}
