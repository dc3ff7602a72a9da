// Snapshot format - the marker grammar shared by encoding and tokenizing.
//
// A snapshot is zero or more framed units:
//
//	\n<<<FILE_START>>>\nFILE: <path>\n<content>\n<<<FILE_END>>>\n
//
// Information Hiding:
// - Escaping of content lines that look like markers
// - Line scanning and byte offsets of framed units

package snapshot

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StartMarker  = "<<<FILE_START>>>"
	EndMarker    = "<<<FILE_END>>>"
	HeaderPrefix = "FILE: "
)

var (
	// ErrUnterminatedBlock means a start marker had no matching end marker.
	ErrUnterminatedBlock = errors.New("unterminated file block")
	// ErrMissingHeader means a start marker was not followed by a FILE: line.
	ErrMissingHeader = errors.New("file block missing header")
)

// SyntaxError locates a malformed framed unit in a blob.
type SyntaxError struct {
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at byte %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// FileBlock is one captured file.
type FileBlock struct {
	Path    string
	Content string
}

// Span is one framed unit found in a blob. [Start,End) covers the whole
// unit including its leading and trailing newline when present.
type Span struct {
	Path    string
	Content string
	Start   int
	End     int
}

// EncodeBlock frames a single file.
func EncodeBlock(b FileBlock) string {
	var sb strings.Builder
	writeBlock(&sb, b)
	return sb.String()
}

// Encode frames every block in order and concatenates the results.
func Encode(blocks []FileBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		writeBlock(&sb, b)
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, b FileBlock) {
	sb.WriteString("\n")
	sb.WriteString(StartMarker)
	sb.WriteString("\n")
	sb.WriteString(HeaderPrefix)
	sb.WriteString(b.Path)
	sb.WriteString("\n")
	sb.WriteString(escapeContent(b.Content))
	sb.WriteString("\n")
	sb.WriteString(EndMarker)
	sb.WriteString("\n")
}

// Decode returns the file blocks of blob in order.
func Decode(blob string) ([]FileBlock, error) {
	spans, err := Tokenize(blob)
	if err != nil {
		return nil, err
	}
	blocks := make([]FileBlock, len(spans))
	for i, s := range spans {
		blocks[i] = FileBlock{Path: s.Path, Content: s.Content}
	}
	return blocks, nil
}

// Tokenize scans blob line by line and returns every framed unit. Text
// between units is ignored. Inside a unit only an unescaped end marker line
// terminates it.
func Tokenize(blob string) ([]Span, error) {
	var spans []Span
	sc := lineScanner{text: blob}

	for {
		line, start, ok := sc.next()
		if !ok {
			return spans, nil
		}
		if line != StartMarker {
			continue
		}

		spanStart := start
		if start > 0 && blob[start-1] == '\n' {
			spanStart = start - 1
		}

		header, hstart, ok := sc.next()
		if !ok || !strings.HasPrefix(header, HeaderPrefix) {
			return nil, &SyntaxError{Offset: hstart, Err: ErrMissingHeader}
		}
		path := strings.TrimPrefix(header, HeaderPrefix)

		var content []string
		closed := false
		for {
			l, _, ok := sc.next()
			if !ok {
				break
			}
			if l == EndMarker {
				closed = true
				break
			}
			content = append(content, unescapeLine(l))
		}
		if !closed {
			return nil, &SyntaxError{Offset: spanStart, Err: ErrUnterminatedBlock}
		}

		spans = append(spans, Span{
			Path:    path,
			Content: strings.Join(content, "\n"),
			Start:   spanStart,
			End:     sc.pos,
		})
	}
}

// lineScanner yields lines without their terminator. pos is the offset just
// past the last returned line's newline (or len(text) at EOF).
type lineScanner struct {
	text string
	pos  int
}

func (s *lineScanner) next() (line string, start int, ok bool) {
	if s.pos >= len(s.text) {
		return "", s.pos, false
	}
	start = s.pos
	if i := strings.IndexByte(s.text[start:], '\n'); i >= 0 {
		s.pos = start + i + 1
		return s.text[start : start+i], start, true
	}
	s.pos = len(s.text)
	return s.text[start:], start, true
}

func escapeContent(content string) string {
	if !strings.Contains(content, StartMarker) && !strings.Contains(content, EndMarker) {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		if isMarker(strings.TrimLeft(l, "\\")) {
			lines[i] = "\\" + l
		}
	}
	return strings.Join(lines, "\n")
}

func unescapeLine(l string) string {
	if strings.HasPrefix(l, "\\") && isMarker(strings.TrimLeft(l, "\\")) {
		return l[1:]
	}
	return l
}

func isMarker(s string) bool {
	return s == StartMarker || s == EndMarker
}
