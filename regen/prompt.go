// Prompt template - placeholder substitution for regeneration requests.
//
// Information Hiding:
// - Placeholder syntax
// - Single-pass substitution

package regen

import "strings"

const (
	placeholderFilename = "{filename}"
	placeholderPath     = "{path}"
	placeholderCodebase = "{codebase}"
)

// DefaultTemplate asks for the missing file with no commentary or markdown.
const DefaultTemplate = "You are a MERN stack developer. Generate the missing file `{filename}` based on the complete codebase provided below.\n" +
	"\n" +
	"**RULES:**\n" +
	"- Analyze the codebase to understand existing patterns, imports, and dependencies\n" +
	"- Only use imports and functions that exist in the provided codebase\n" +
	"- Follow the same coding style and structure as similar files\n" +
	"- DO NOT invent or hallucinate imports/libraries that don't exist in the codebase.\n" +
	"- DO NOT assume any other functions/files exist in the codebase apart from the ones i sent you.\n" +
	"- Component should be able to work correctly with the existing codebase without any changes.\n" +
	"\n" +
	"The file will be saved at this path: `{path}` so make sure imports are correct.\n" +
	"Generate only the complete code for `{filename}` - no explanations, no markdown formatting, the response will be saved as `{filename}` and it should be good to go.\n" +
	"\n" +
	"**CODEBASE:**\n" +
	"{codebase}"

// Request is the data a prompt is rendered from.
type Request struct {
	Filename string
	Path     string
	Codebase string
}

// Template is a prompt with {filename}, {path} and {codebase} placeholders.
type Template string

// Render replaces every occurrence of each placeholder in a single pass, so
// substituted values are never expanded again.
func (t Template) Render(req Request) string {
	r := strings.NewReplacer(
		placeholderFilename, req.Filename,
		placeholderPath, req.Path,
		placeholderCodebase, req.Codebase,
	)
	return r.Replace(string(t))
}
