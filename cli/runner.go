// Command execution for CLI commands.
//
// Information Hiding:
// - Wiring of settings into walker, snapshot, store and orchestrator
// - Target resolution and availability reporting
// - Output formatting

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/richinex/replica/blockstore"
	"github.com/richinex/replica/config"
	"github.com/richinex/replica/llm"
	"github.com/richinex/replica/logging"
	"github.com/richinex/replica/regen"
	"github.com/richinex/replica/snapshot"
	"github.com/richinex/replica/walker"
)

// Options holds CLI execution options.
type Options struct {
	Settings config.Settings
	Verbose  bool
	// Spinner shows progress while a generation call is running.
	Spinner bool
	Out     io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) rules() walker.SkipRules {
	return walker.NewSkipRules(o.Settings.WalkOptions())
}

func (o Options) store() *blockstore.Store {
	return &blockstore.Store{Dir: o.Settings.Paths.Records, Logger: logging.Get("blockstore")}
}

// Snapshot serializes root (or the configured codebase) and writes the
// snapshot file.
func Snapshot(ctx context.Context, root string, opts Options) error {
	w := opts.out()
	if root == "" {
		root = opts.Settings.Paths.Codebase
	}

	s := snapshot.New(opts.rules(), logging.Get("snapshot"))
	res, err := s.Serialize(ctx, root)
	if err != nil {
		return err
	}
	if len(res.Included) == 0 {
		warn(w, "no files matched in %s", root)
	}
	if err := snapshot.WriteFile(opts.Settings.Paths.Snapshot, res.Blob); err != nil {
		return err
	}

	success(w, "Snapshot written to %s", opts.Settings.Paths.Snapshot)
	fmt.Fprintf(w, "  files:   %d included, %d skipped\n", len(res.Included), len(res.Skipped))
	fmt.Fprintf(w, "  size:    %s of source, %s written\n", bytesText(res.TotalBytes), bytesText(int64(len(res.Blob))))
	fmt.Fprintf(w, "  digest:  %s\n", res.Digest)
	if res.TotalBytes > snapshot.SizeWarning {
		warn(w, "snapshot exceeds %s and may not fit a model context window", bytesText(snapshot.SizeWarning))
	}

	if opts.Verbose {
		for _, sk := range res.Skipped {
			muted(w, "  skipped %s (%s)", sk.Path, sk.Reason)
		}
	}
	return nil
}

// Tree prints the directory structure of root down to depth levels.
// depth <= 0 means unlimited.
func Tree(ctx context.Context, root string, depth int, opts Options) error {
	if root == "" {
		root = opts.Settings.Paths.Codebase
	}
	rules := opts.rules()
	fw := &walker.FastWalker{Rules: rules, Logger: logging.Get("walker")}
	nodes, err := collectTree(ctx, fw, rules, root, depth)
	if err != nil {
		return err
	}
	renderTree(opts.out(), treeRootName(root), nodes)
	return nil
}

func readSnapshot(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading snapshot: %w", err)
	}
	return string(data), nil
}

// Blocks lists the file blocks of a snapshot with 1-based indices.
func Blocks(snapshotPath string, opts Options) error {
	if snapshotPath == "" {
		snapshotPath = opts.Settings.Paths.Snapshot
	}
	blob, err := readSnapshot(snapshotPath)
	if err != nil {
		return err
	}
	paths, err := blockstore.ListBlocks(blob)
	if err != nil {
		return err
	}

	w := opts.out()
	title(w, fmt.Sprintf("%d blocks in %s", len(paths), snapshotPath))
	width := len(strconv.Itoa(len(paths)))
	for i, p := range paths {
		fmt.Fprintf(w, "%*d. %s\n", width, i+1, p)
	}
	return nil
}

// Remove excises a block from the configured snapshot and saves the
// removed-file record. index, when positive, selects the block by its
// position in Blocks output instead of target.
func Remove(target string, index int, opts Options) error {
	blob, err := readSnapshot(opts.Settings.Paths.Snapshot)
	if err != nil {
		return err
	}

	if index > 0 {
		paths, err := blockstore.ListBlocks(blob)
		if err != nil {
			return err
		}
		if index > len(paths) {
			return fmt.Errorf("block index %d out of range (1-%d)", index, len(paths))
		}
		target = paths[index-1]
	}
	if target == "" {
		return errors.New("a block path or --index is required")
	}

	text, err := blockstore.Remove(blob, target)
	if err != nil {
		return err
	}
	path, err := opts.store().Save(target, text)
	if err != nil {
		return err
	}

	w := opts.out()
	success(w, "Removed %s", target)
	fmt.Fprintf(w, "  record:  %s\n", path)
	fmt.Fprintf(w, "  size:    %s\n", bytesText(int64(len(text))))
	return nil
}

// Records lists saved removed-file records.
func Records(opts Options) error {
	infos, err := opts.store().List()
	if err != nil {
		return err
	}
	w := opts.out()
	if len(infos) == 0 {
		muted(w, "no records in %s", opts.Settings.Paths.Records)
		return nil
	}
	title(w, fmt.Sprintf("%d records in %s", len(infos), opts.Settings.Paths.Records))
	for _, info := range infos {
		if info.Err != nil {
			fmt.Fprintf(w, "  %s  %s\n", info.Name, errorStyle.Render(info.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "  %s  %s\n", info.Name, mutedStyle.Render(info.Record.Path()))
	}
	return nil
}

// Targets lists configured generation targets and whether each can run.
func Targets(opts Options) error {
	targets, unavailable := opts.Settings.BuildTargets()
	w := opts.out()
	title(w, "Generation targets")
	for _, t := range targets {
		model := t.Config.Model
		if model == "" {
			model = "(loaded model)"
		}
		fmt.Fprintf(w, "  %-18s %s %s\n", t.Key, t.DisplayName, mutedStyle.Render(model))
	}
	for _, u := range unavailable {
		fmt.Fprintf(w, "  %-18s %s %s\n", u.Key, u.DisplayName, warningStyle.Render(u.Err.Error()))
	}
	return nil
}

// Status probes every keyless local target and reports its loaded model.
func Status(ctx context.Context, opts Options) error {
	targets, _ := opts.Settings.BuildTargets()
	w := opts.out()

	found := false
	for _, t := range targets {
		checker, ok := t.Backend.(llm.StatusChecker)
		if !ok {
			continue
		}
		found = true
		if err := checker.Status(ctx); err != nil {
			warn(w, "%s: not reachable (%v)", t.DisplayName, err)
			continue
		}
		success(w, "%s: running", t.DisplayName)
		if lister, ok := t.Backend.(llm.ModelLister); ok {
			model, err := lister.CurrentModel(ctx)
			if err != nil {
				warn(w, "  no model loaded (%v)", err)
				continue
			}
			fmt.Fprintf(w, "  model: %s\n", model)
		}
	}
	if !found {
		muted(w, "no local targets configured")
	}
	return nil
}

// Regenerate asks target key to rebuild the file removed in recordName.
// show prints a prompt preview and the highlighted result.
func Regenerate(ctx context.Context, recordName, key string, show bool, opts Options) error {
	targets, unavailable := opts.Settings.BuildTargets()
	for _, u := range unavailable {
		if u.Key == key {
			return fmt.Errorf("target %s is unavailable: %w", key, u.Err)
		}
	}

	tmpl, err := opts.Settings.Template()
	if err != nil {
		return err
	}
	orch, err := regen.New(regen.Options{
		OutputRoot:  opts.Settings.Paths.Output,
		LogsRoot:    opts.Settings.Paths.Logs,
		Template:    tmpl,
		StripFences: opts.Settings.Generation.StripFences,
		Timeout:     opts.Settings.Generation.Timeout,
		Logger:      logging.Get("regen"),
	}, targets...)
	if err != nil {
		return err
	}
	target, err := orch.Target(key)
	if err != nil {
		return fmt.Errorf("%w (run 'replica targets' to list them)", err)
	}

	rec, err := opts.store().Load(recordName)
	if err != nil {
		return err
	}

	w := opts.out()
	title(w, fmt.Sprintf("Regenerating %s with %s", rec.Path(), target.DisplayName))
	if show {
		prompt := tmpl.Render(regen.Request{Filename: rec.Filename(), Path: rec.Path(), Codebase: rec.Residual})
		preview, total := promptPreview(prompt)
		muted(w, "prompt preview (%d chars total):", total)
		fmt.Fprintln(w, preview)
		fmt.Fprintln(w)
	}

	stop := startSpinner(opts, fmt.Sprintf("Waiting for %s...", target.DisplayName))
	art, genErr := orch.Regenerate(ctx, rec, key)
	stop(genErr == nil)

	if art.LogErr != nil {
		warn(w, "audit log not written: %v", art.LogErr)
	} else if art.LogPath != "" {
		muted(w, "  log:       %s", art.LogPath)
	}
	if genErr != nil {
		return genErr
	}

	success(w, "Saved %s", art.CodePath)
	if art.ReasoningPath != "" {
		fmt.Fprintf(w, "  reasoning: %s\n", art.ReasoningPath)
	}
	fmt.Fprintf(w, "  model:     %s\n", art.Model)
	fmt.Fprintf(w, "  elapsed:   %s\n", art.Elapsed.Round(time.Millisecond))
	if art.Usage != nil {
		fmt.Fprintf(w, "  tokens:    %d prompt, %d completion\n", art.Usage.PromptTokens, art.Usage.CompletionTokens)
	}

	if show {
		code, err := os.ReadFile(art.CodePath)
		if err != nil {
			return fmt.Errorf("reading generated file: %w", err)
		}
		fmt.Fprintln(w)
		return highlight(w, string(code), rec.Filename())
	}
	return nil
}

// startSpinner shows an elapsed-time spinner when enabled and returns a
// function that stops it.
func startSpinner(opts Options, text string) func(ok bool) {
	if !opts.Spinner {
		return func(bool) {}
	}
	spinner, err := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithShowTimer(true).
		WithRemoveWhenDone(false).
		WithWriter(opts.out()).
		Start(text)
	if err != nil {
		return func(bool) {}
	}
	return func(ok bool) {
		if ok {
			spinner.Success(strings.TrimSuffix(text, "...") + " done")
		} else {
			spinner.Fail(strings.TrimSuffix(text, "...") + " failed")
		}
	}
}
