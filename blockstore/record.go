// Removed-file records - metadata header tagging and parsing.
//
// Information Hiding:
// - Header delimiters and JSON layout
// - Record file naming

package blockstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
)

const (
	metadataOpen  = "/*"
	metadataStart = "METADATA_START"
	metadataEnd   = "METADATA_END"
	metadataClose = "*/"

	// RecordSuffix ends every record file name.
	RecordSuffix = "_modified_codebase.txt"
)

// Metadata is the JSON document embedded in a record header.
type Metadata struct {
	RemovedFile RemovedFile `json:"removedFile"`
}

// RemovedFile identifies the excised file.
type RemovedFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Record is a parsed removed-file record.
type Record struct {
	Name     string
	Metadata Metadata
	Residual string
}

// Filename returns the base name of the removed file.
func (r Record) Filename() string { return r.Metadata.RemovedFile.Filename }

// Path returns the snapshot-relative path of the removed file.
func (r Record) Path() string { return r.Metadata.RemovedFile.Path }

// TagRemoved prepends the metadata header for target to residual.
func TagRemoved(residual, target string) (string, error) {
	meta := Metadata{RemovedFile: RemovedFile{
		Filename: path.Base(target),
		Path:     target,
	}}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(metadataOpen + " " + metadataStart + "\n")
	sb.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	sb.WriteString("\n" + metadataEnd + " " + metadataClose + "\n\n")
	sb.WriteString(residual)
	return sb.String(), nil
}

// ParseRecord extracts the metadata header and residual snapshot from the
// text of a record. The header must be the first non-whitespace content.
func ParseRecord(name, text string) (Record, error) {
	rest := strings.TrimLeftFunc(text, unicode.IsSpace)
	if !strings.HasPrefix(rest, metadataOpen) {
		return Record{}, &MetadataMissingError{Record: name}
	}
	rest = strings.TrimLeftFunc(rest[len(metadataOpen):], unicode.IsSpace)
	if !strings.HasPrefix(rest, metadataStart) {
		return Record{}, &MetadataMissingError{Record: name}
	}
	rest = rest[len(metadataStart):]

	meta, after, err := splitHeader(name, rest)
	if err != nil {
		return Record{}, err
	}
	switch {
	case meta.RemovedFile.Path == "":
		return Record{}, &MetadataParseError{Record: name, Err: errors.New("removedFile.path is empty")}
	case meta.RemovedFile.Filename == "":
		return Record{}, &MetadataParseError{Record: name, Err: errors.New("removedFile.filename is empty")}
	case meta.RemovedFile.Filename == "." || meta.RemovedFile.Filename == "..":
		return Record{}, &MetadataParseError{Record: name, Err: fmt.Errorf("removedFile.filename %q is not a file name", meta.RemovedFile.Filename)}
	}

	return Record{
		Name:     name,
		Metadata: meta,
		Residual: strings.TrimSpace(after),
	}, nil
}

// splitHeader finds the METADATA_END terminator that closes the JSON
// document in rest and returns the decoded metadata and the text after "*/".
// A terminator is accepted only when "*/" follows it and the text before it
// is valid JSON, so the marker may appear inside a path.
func splitHeader(name, rest string) (Metadata, string, error) {
	var firstErr error
	for off := 0; ; {
		i := strings.Index(rest[off:], metadataEnd)
		if i < 0 {
			break
		}
		end := off + i
		off = end + len(metadataEnd)

		after := strings.TrimLeftFunc(rest[off:], unicode.IsSpace)
		if !strings.HasPrefix(after, metadataClose) {
			continue
		}
		var meta Metadata
		if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &meta); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return meta, after[len(metadataClose):], nil
	}
	if firstErr != nil {
		return Metadata{}, "", &MetadataParseError{Record: name, Err: firstErr}
	}
	return Metadata{}, "", &MetadataMissingError{Record: name}
}

// RecordFileName returns the record file name for target: its base name
// without extension followed by RecordSuffix. Names that are all extension
// (".env") keep the full base name.
func RecordFileName(target string) string {
	base := path.Base(target)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		stem = base
	}
	return stem + RecordSuffix
}
