// Package regen regenerates an excised file from a removed-file record by
// prompting a configured generation target.
//
// Orchestrator - target registry and the regeneration pipeline.
//
// Information Hiding:
// - Target lookup (the only per-backend branching)
// - Response normalization into code and reasoning artifacts
// - Audit logging that never aborts a run

package regen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/replica/blockstore"
	"github.com/richinex/replica/internal/fence"
	"github.com/richinex/replica/llm"
	"github.com/richinex/replica/logging"
)

// Target is a named backend plus the settings used for every call to it.
type Target struct {
	Key         string
	DisplayName string
	// Folder is the output and log subdirectory, slash separated.
	Folder string
	// LogName prefixes audit log file names.
	LogName string
	Backend llm.Backend
	Config  llm.ModelConfig
}

// Options configures an Orchestrator.
type Options struct {
	OutputRoot string
	LogsRoot   string
	// Template defaults to DefaultTemplate.
	Template Template
	// StripFences removes a markdown fence wrapping the whole answer.
	StripFences bool
	// Timeout bounds each generation call; zero means no limit.
	Timeout time.Duration
	Logger  *logging.Logger
	// Clock and IDs are injectable for tests.
	Clock func() time.Time
	IDs   func() string
}

// Artifact describes the files produced by one regeneration.
type Artifact struct {
	CodePath      string
	ReasoningPath string
	LogPath       string
	// LogErr is set when the audit log could not be written.
	LogErr  error
	Model   string
	RunID   string
	Usage   *llm.TokenUsage
	Elapsed time.Duration
}

// Orchestrator runs regenerations one at a time.
type Orchestrator struct {
	opts    Options
	targets []Target
	byKey   map[string]int
	logger  *logging.Logger
}

// New registers targets in order. Duplicate or empty keys and targets
// without a backend are rejected.
func New(opts Options, targets ...Target) (*Orchestrator, error) {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.IDs == nil {
		opts.IDs = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Get("regen")
	}

	o := &Orchestrator{opts: opts, byKey: make(map[string]int), logger: logger}
	for _, t := range targets {
		if t.Key == "" {
			return nil, errors.New("target key is empty")
		}
		if t.Backend == nil {
			return nil, fmt.Errorf("target %s has no backend", t.Key)
		}
		if _, dup := o.byKey[t.Key]; dup {
			return nil, fmt.Errorf("duplicate target key: %s", t.Key)
		}
		if t.Folder == "" {
			t.Folder = t.Key
		}
		if t.LogName == "" {
			t.LogName = t.Backend.Name()
		}
		if t.DisplayName == "" {
			t.DisplayName = t.Key
		}
		o.byKey[t.Key] = len(o.targets)
		o.targets = append(o.targets, t)
	}
	return o, nil
}

// Targets returns the registered targets in registration order.
func (o *Orchestrator) Targets() []Target {
	return append([]Target(nil), o.targets...)
}

// Target returns the target registered under key.
func (o *Orchestrator) Target(key string) (Target, error) {
	i, ok := o.byKey[key]
	if !ok {
		return Target{}, fmt.Errorf("%w: %s", ErrUnknownTarget, key)
	}
	return o.targets[i], nil
}

// RegenerateFile loads a record from store and regenerates it.
func (o *Orchestrator) RegenerateFile(ctx context.Context, store *blockstore.Store, recordName, key string) (Artifact, error) {
	rec, err := store.Load(recordName)
	if err != nil {
		return Artifact{}, err
	}
	return o.Regenerate(ctx, rec, key)
}

// Regenerate prompts the target with the record's residual snapshot and
// saves the answer as <OutputRoot>/<folder>/<sanitized filename>. An audit
// log is written for every call, successful or not.
func (o *Orchestrator) Regenerate(ctx context.Context, rec blockstore.Record, key string) (Artifact, error) {
	target, err := o.Target(key)
	if err != nil {
		return Artifact{}, err
	}

	prompt := o.opts.Template.Render(Request{
		Filename: rec.Filename(),
		Path:     rec.Path(),
		Codebase: rec.Residual,
	})

	callCtx := ctx
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	logger := o.logger.With("target", target.Key, "file", rec.Path())
	logger.Info("generation started", "provider", target.Backend.Name(), "prompt_bytes", len(prompt))

	started := o.opts.Clock()
	res, genErr := target.Backend.Generate(callCtx, prompt, target.Config)

	art := Artifact{
		Model:   res.Model,
		RunID:   o.opts.IDs(),
		Usage:   res.Usage,
		Elapsed: o.opts.Clock().Sub(started),
	}
	if art.Model == "" {
		art.Model = target.Config.Model
	}

	entry := auditEntry{
		RunID:    art.RunID,
		Provider: target.LogName,
		Model:    art.Model,
		Filename: rec.Filename(),
		Path:     rec.Path(),
		At:       started,
		Prompt:   prompt,
		Result:   res,
		Err:      genErr,
	}
	art.LogPath = filepath.Join(o.opts.LogsRoot, filepath.FromSlash(target.Folder), entry.logFileName())
	if err := writeFile(art.LogPath, entry.render()); err != nil {
		logger.Warn("audit log not written", "path", art.LogPath, "error", err)
		art.LogErr = err
		art.LogPath = ""
	}

	if genErr != nil {
		logger.Error("generation failed", "error", genErr)
		if errors.Is(genErr, llm.ErrEmptyResponse) {
			return art, &EmptyGenerationError{Provider: target.Backend.Name()}
		}
		return art, &BackendError{Provider: target.Backend.Name(), Err: genErr}
	}

	answer := res.Answer
	if strings.TrimSpace(answer) == "" {
		logger.Error("empty generation")
		return art, &EmptyGenerationError{Provider: target.Backend.Name()}
	}
	if o.opts.StripFences {
		if stripped, ok := fence.Strip(answer); ok {
			logger.Debug("stripped markdown fence")
			answer = stripped
		}
	}

	sanitized := SanitizeFilename(rec.Filename())
	dir := filepath.Join(o.opts.OutputRoot, filepath.FromSlash(target.Folder))

	art.CodePath = filepath.Join(dir, sanitized)
	if err := writeFile(art.CodePath, answer); err != nil {
		return art, err
	}

	if res.HasReasoning() && target.Config.IncludeReasoning {
		art.ReasoningPath = filepath.Join(dir, reasoningFileName(sanitized))
		doc := reasoningDocument(rec.Filename(), art.Model, res.Reasoning, answer, started)
		if err := writeFile(art.ReasoningPath, doc); err != nil {
			return art, err
		}
	}

	logger.Info("generation saved", "path", art.CodePath, "elapsed", art.Elapsed)
	return art, nil
}
