// Console rendering for CLI commands.
//
// Information Hiding:
// - Color palette and text styles
// - Syntax highlighting of generated code
// - Prompt preview truncation

package cli

import (
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/richinex/replica/internal/fence"
)

var (
	accentColor  = lipgloss.Color("#00D9FF")
	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")
	mutedColor   = lipgloss.Color("#666666")

	titleStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(dangerColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	dirStyle     = lipgloss.NewStyle().Foreground(accentColor)
)

// previewChars bounds the prompt preview.
const previewChars = 500

// highlightTheme is the chroma style used for code previews.
const highlightTheme = "monokai"

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render(s))
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warningStyle.Render("! "+fmt.Sprintf(format, args...)))
}

func muted(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintError writes err to w in the error style.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("✗ "+err.Error()))
}

func bytesText(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// promptPreview returns at most previewChars runes of prompt and the total
// length in runes.
func promptPreview(prompt string) (string, int) {
	total := utf8.RuneCountInString(prompt)
	if total <= previewChars {
		return prompt, total
	}
	runes := []rune(prompt)
	return string(runes[:previewChars]) + "...", total
}

// highlight writes code to w with terminal colors. A fenced answer's info
// string picks the language, then filename's extension. Unknown languages
// fall back to plain text.
func highlight(w io.Writer, code, filename string) error {
	lang := fence.Language(code)
	if lang == "" {
		lang = strings.TrimPrefix(path.Ext(filename), ".")
	}
	if lang == "" {
		lang = "text"
	}
	if err := quick.Highlight(w, code, lang, "terminal256", highlightTheme); err != nil {
		return fmt.Errorf("highlighting %s: %w", filename, err)
	}
	if !strings.HasSuffix(code, "\n") {
		fmt.Fprintln(w)
	}
	return nil
}
