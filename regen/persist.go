// Artifact persistence - generated files, reasoning documents, audit logs.
//
// Information Hiding:
// - Output and log directory layout
// - File name sanitization and timestamp encoding
// - Reasoning document and audit log formats

package regen

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/richinex/replica/llm"
)

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

// reasoningFileName is the sanitized name without its extension plus
// "_reasoning.md".
func reasoningFileName(sanitized string) string {
	stem := strings.TrimSuffix(sanitized, path.Ext(sanitized))
	if stem == "" {
		stem = sanitized
	}
	return stem + "_reasoning.md"
}

// fileTimestamp renders t as an ISO timestamp safe for file names.
func fileTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(isoTimestamp(t))
}

func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func writeFile(p string, content string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return &PersistenceError{Path: p, Err: err}
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		return &PersistenceError{Path: p, Err: err}
	}
	return nil
}

func reasoningDocument(filename, model, reasoning, answer string, at time.Time) string {
	lang := strings.TrimPrefix(path.Ext(filename), ".")
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Reasoning Process for %s\n\n", filename)
	fmt.Fprintf(&sb, "## Model: %s\n", model)
	fmt.Fprintf(&sb, "## Timestamp: %s\n\n", isoTimestamp(at))
	sb.WriteString("---\n\n")
	sb.WriteString(reasoning)
	sb.WriteString("\n\n---\n\n")
	sb.WriteString("**Final Code Output:**\n")
	fmt.Fprintf(&sb, "```%s\n%s\n```\n", lang, answer)
	return sb.String()
}

// auditEntry is everything recorded about one generation call.
type auditEntry struct {
	RunID    string
	Provider string
	Model    string
	Filename string
	Path     string
	At       time.Time
	Prompt   string
	Result   llm.Result
	Err      error
}

func (e auditEntry) render() string {
	var sb strings.Builder
	sb.WriteString("\n=== API CALL LOG ===\n")
	fmt.Fprintf(&sb, "Run-ID: %s\n", e.RunID)
	fmt.Fprintf(&sb, "Provider: %s\n", e.Provider)
	fmt.Fprintf(&sb, "Model: %s\n", e.Model)
	fmt.Fprintf(&sb, "File: %s\n", e.Filename)
	fmt.Fprintf(&sb, "Path: %s\n", e.Path)
	fmt.Fprintf(&sb, "Timestamp: %s\n", isoTimestamp(e.At))
	sb.WriteString("\n=== PROMPT SENT ===\n")
	sb.WriteString(e.Prompt)
	sb.WriteString("\n\n=== RESPONSE RECEIVED ===\n")
	sb.WriteString(e.response())
	sb.WriteString("\n\n")
	if e.Err != nil {
		sb.WriteString("=== ERROR ===\n")
		sb.WriteString(e.Err.Error())
		sb.WriteString("\n\n")
	}
	sb.WriteString("=== END LOG ===\n")
	return sb.String()
}

func (e auditEntry) response() string {
	switch {
	case e.Result.Raw != "":
		return e.Result.Raw
	case e.Result.HasReasoning():
		return "REASONING:\n" + e.Result.Reasoning + "\n\nANSWER:\n" + e.Result.Answer
	default:
		return e.Result.Answer
	}
}

// logFileName is <provider>_<sanitized file>_<timestamp>.log.
func (e auditEntry) logFileName() string {
	return fmt.Sprintf("%s_%s_%s.log", e.Provider, SanitizeFilename(e.Filename), fileTimestamp(e.At))
}
