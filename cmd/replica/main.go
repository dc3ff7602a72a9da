// Package main provides the replica CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/richinex/replica/cli"
	"github.com/richinex/replica/config"
	"github.com/richinex/replica/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	settings config.Settings
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "replica",
		Short: "Snapshot a codebase, remove a file, and have an LLM rebuild it",
		Long: `Replica measures how well language models reconstruct missing source files.

Workflow:
- snapshot: serialize a project tree into one framed text file
- remove: excise one file block and save a tagged record
- regenerate: prompt a target model with the residual snapshot and save its answer`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			logCfg := logging.Config{
				Level:        settings.Logging.Level,
				Path:         settings.Logging.Path,
				ConsoleLevel: settings.Logging.ConsoleLevel,
			}
			if verbose {
				logCfg.Level = "debug"
				logCfg.ConsoleLevel = "debug"
			}
			return logging.Init(logCfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default: ./replica.yaml or $XDG_CONFIG_HOME/replica/replica.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(blocksCmd())
	rootCmd.AddCommand(removeCmd())
	rootCmd.AddCommand(recordsCmd())
	rootCmd.AddCommand(targetsCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(regenerateCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Settings: settings,
		Verbose:  verbose,
		Spinner:  term.IsTerminal(int(os.Stdout.Fd())),
		Out:      os.Stdout,
	}
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [root]",
		Short: "Serialize a project tree into the snapshot file",
		Long: `Walk the project tree (default: paths.codebase), skipping dependency and
build directories, binary assets and hidden files, and write every retained
file as a framed block to paths.snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Snapshot(cmd.Context(), optionalArg(args), options())
		},
	}
}

func treeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree [root]",
		Short: "Show the directory structure a snapshot would cover",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Tree(cmd.Context(), optionalArg(args), depth, options())
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "Maximum depth (0 for unlimited)")

	return cmd
}

func blocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks [snapshot]",
		Short: "List the file blocks of a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Blocks(optionalArg(args), options())
		},
	}
}

func removeCmd() *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "remove [path]",
		Short: "Remove one file block and save a removed-file record",
		Long: `Remove the block whose header path matches exactly, tag the residual
snapshot with the removed file's name and path, and save it under
paths.records. Use --index to pick a block by its number in 'replica blocks'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Remove(optionalArg(args), index, options())
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", 0, "1-based block number from 'replica blocks'")

	return cmd
}

func recordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List removed-file records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Records(options())
		},
	}
}

func targetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured generation targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Targets(options())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check local model servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Status(cmd.Context(), options())
		},
	}
}

func regenerateCmd() *cobra.Command {
	var target string
	var show bool

	cmd := &cobra.Command{
		Use:   "regenerate [record]",
		Short: "Have a target model rebuild a removed file",
		Long: `Load a removed-file record (by record file name or by the removed file's
path), prompt the target with the residual snapshot, and save the answer under
paths.output/<target folder>/. Every call is logged under paths.logs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Regenerate(cmd.Context(), args[0], target, show, options())
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target key (see 'replica targets')")
	cmd.Flags().BoolVar(&show, "show", false, "Preview the prompt and print the generated file")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}
