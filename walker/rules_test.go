package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipFileDefaults(t *testing.T) {
	rules := DefaultSkipRules()

	tests := []struct {
		name   string
		rel    string
		skip   bool
		reason SkipReason
	}{
		{"index.js", "index.js", false, ""},
		{"App.TSX", "src/App.TSX", false, ""},
		{".eslintrc", ".eslintrc", true, ReasonHidden},
		{"package-lock.json", "package-lock.json", true, ReasonSkipListed},
		{"logo.PNG", "public/logo.PNG", true, ReasonSkipListed},
		{"README.md", "README.md", true, ReasonNotIncluded},
		{"Makefile", "Makefile", true, ReasonNotIncluded},
		{"odd\nname.js", "odd\nname.js", true, ReasonUnrepresented},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			skip, reason := rules.SkipFile(tt.name, tt.rel)
			assert.Equal(t, tt.skip, skip)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestSkipDir(t *testing.T) {
	rules := NewSkipRules(Options{
		Dirs:     []string{"node_modules"},
		Patterns: []string{"**/fixtures", "vendor/**"},
	})

	assert.True(t, rules.SkipDir("node_modules", "web/node_modules"))
	assert.True(t, rules.SkipDir("fixtures", "test/data/fixtures"))
	assert.True(t, rules.SkipDir("vendor", "vendor"))
	assert.False(t, rules.SkipDir("src", "src"))
	assert.False(t, rules.SkipDir("vendored", "vendored"))
}

func TestZeroRulesSkipNothing(t *testing.T) {
	var rules SkipRules
	skip, _ := rules.SkipFile("README.md", "README.md")
	assert.False(t, skip)
	assert.False(t, rules.SkipDir("node_modules", "node_modules"))
}

func TestExtensionsNormalized(t *testing.T) {
	rules := NewSkipRules(Options{
		Extensions:        []string{"LOG"},
		IncludeExtensions: []string{"go", ".MD", "log"},
	})

	skip, reason := rules.SkipFile("run.log", "run.log")
	assert.True(t, skip)
	assert.Equal(t, ReasonSkipListed, reason)

	skip, _ = rules.SkipFile("NOTES.md", "NOTES.md")
	assert.False(t, skip)

	opts := rules.Options()
	assert.Equal(t, []string{".go", ".log", ".md"}, opts.IncludeExtensions)
}

func TestOptionsAreCopies(t *testing.T) {
	opts := Options{Dirs: []string{"tmp"}}
	rules := NewSkipRules(opts)
	opts.Dirs[0] = "src"

	assert.True(t, rules.SkipDir("tmp", "tmp"))
	assert.False(t, rules.SkipDir("src", "src"))

	got := rules.Options()
	got.Dirs[0] = "mutated"
	assert.Equal(t, []string{"tmp"}, rules.Options().Dirs)
}

func TestMatchGlobPattern(t *testing.T) {
	tests := []struct {
		rel, pattern string
		want         bool
	}{
		{"src/app.test.js", "*.test.js", true},
		{"src/app.js", "*.test.js", false},
		{"src/gen/a.pb.go", "**/*.pb.go", true},
		{"src/gen/a.go", "src/**/*.go", true},
		{"lib/gen/a.go", "src/**/*.go", false},
		{"a/b/c/d.js", "**/c/*.js", true},
		{"a/b/x/d.js", "**/c/*.js", false},
		{"docs/api.md", "docs/*.md", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchGlobPattern(tt.rel, tt.pattern), "%s vs %s", tt.rel, tt.pattern)
	}
}
