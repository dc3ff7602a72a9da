// Skip rules - decides which directories are pruned and which files are
// left out of a snapshot.
//
// Information Hiding:
// - Set representation and extension normalization
// - Glob matching with ** support
// - Order in which skip checks are applied

package walker

import (
	"path"
	"sort"
	"strings"
)

// SkipReason explains why a file was left out of a snapshot.
type SkipReason string

const (
	ReasonHidden        SkipReason = "hidden"
	ReasonSkipListed    SkipReason = "file/extension skip"
	ReasonNotIncluded   SkipReason = "not in include extensions"
	ReasonPattern       SkipReason = "pattern"
	ReasonUnrepresented SkipReason = "unrepresentable path"
)

// Options lists the raw rule inputs. Extensions may be given with or
// without the leading dot and in any case.
type Options struct {
	Dirs              []string
	Files             []string
	Extensions        []string
	IncludeExtensions []string
	Patterns          []string
}

// DefaultOptions returns the stock rules for web and Python projects.
func DefaultOptions() Options {
	return Options{
		Dirs: []string{
			"node_modules", ".git", ".next", "dist", "build",
			"venv", "__pycache__", "coverage", ".vscode", ".idea",
		},
		Files: []string{
			"package-lock.json", "yarn.lock", ".DS_Store",
			".env", ".env.local", ".env.example",
		},
		Extensions: []string{
			".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico",
			".pdf", ".zip", ".tar", ".gz", ".mp4", ".mp3",
			".woff", ".woff2", ".ttf", ".eot", ".exe", ".bin",
		},
		IncludeExtensions: []string{
			".js", ".jsx", ".ts", ".tsx", ".json", ".css", ".scss", ".html", ".py",
		},
	}
}

// SkipRules is an immutable rule set. The zero value skips nothing.
type SkipRules struct {
	dirs     map[string]struct{}
	files    map[string]struct{}
	exts     map[string]struct{}
	include  map[string]struct{}
	patterns []string
}

// NewSkipRules builds a rule set from opts. The inputs are copied.
func NewSkipRules(opts Options) SkipRules {
	return SkipRules{
		dirs:     toSet(opts.Dirs, identity),
		files:    toSet(opts.Files, identity),
		exts:     toSet(opts.Extensions, normalizeExt),
		include:  toSet(opts.IncludeExtensions, normalizeExt),
		patterns: normalizePatterns(opts.Patterns),
	}
}

// DefaultSkipRules is NewSkipRules(DefaultOptions()).
func DefaultSkipRules() SkipRules {
	return NewSkipRules(DefaultOptions())
}

// Options returns a copy of the rule inputs in normalized, sorted form.
func (r SkipRules) Options() Options {
	return Options{
		Dirs:              fromSet(r.dirs),
		Files:             fromSet(r.files),
		Extensions:        fromSet(r.exts),
		IncludeExtensions: fromSet(r.include),
		Patterns:          append([]string(nil), r.patterns...),
	}
}

// SkipDir reports whether the directory name (base name) at rel should be
// pruned. rel is slash-separated and relative to the walk root.
func (r SkipRules) SkipDir(name, rel string) bool {
	if strings.Contains(rel, "\n") {
		return true
	}
	if _, ok := r.dirs[name]; ok {
		return true
	}
	return r.matchesPattern(rel)
}

// SkipFile reports whether the file should be left out and why.
func (r SkipRules) SkipFile(name, rel string) (bool, SkipReason) {
	if strings.Contains(rel, "\n") {
		return true, ReasonUnrepresented
	}
	if strings.HasPrefix(name, ".") {
		return true, ReasonHidden
	}
	if _, ok := r.files[name]; ok {
		return true, ReasonSkipListed
	}
	ext := strings.ToLower(path.Ext(name))
	if _, ok := r.exts[ext]; ok {
		return true, ReasonSkipListed
	}
	if r.matchesPattern(rel) {
		return true, ReasonPattern
	}
	if len(r.include) > 0 {
		if _, ok := r.include[ext]; !ok {
			return true, ReasonNotIncluded
		}
	}
	return false, ""
}

func (r SkipRules) matchesPattern(rel string) bool {
	for _, p := range r.patterns {
		if matchGlobPattern(rel, p) {
			return true
		}
	}
	return false
}

// matchGlobPattern matches a slash path against a pattern that may contain
// "**" (any number of directories). Patterns without a slash or "**" match
// the base name at any depth.
func matchGlobPattern(rel, pattern string) bool {
	parts := strings.Split(pattern, "**")

	if len(parts) == 1 {
		if !strings.Contains(pattern, "/") {
			return matchPattern(pattern, path.Base(rel))
		}
		return matchPattern(pattern, rel)
	}

	// **/*.go means any depth followed by .go files
	// src/**/*.go means src/ then any depth then .go files
	prefix := strings.TrimSuffix(parts[0], "/")
	if prefix != "" && rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
		return false
	}

	suffix := strings.TrimPrefix(parts[len(parts)-1], "/")
	if suffix == "" {
		return true
	}
	if strings.Contains(suffix, "/") {
		segs := strings.Count(suffix, "/") + 1
		relSegs := strings.Split(rel, "/")
		if len(relSegs) < segs {
			return false
		}
		return matchPattern(suffix, strings.Join(relSegs[len(relSegs)-segs:], "/"))
	}
	return matchPattern(suffix, path.Base(rel))
}

func matchPattern(pattern, name string) bool {
	matched, err := path.Match(pattern, name)
	return err == nil && matched
}

func identity(s string) string { return s }

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func normalizePatterns(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toSet(items []string, norm func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = norm(item); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

func fromSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
