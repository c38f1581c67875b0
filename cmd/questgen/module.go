package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"questgen/internal/extract"
	"questgen/internal/pipeline"
	"questgen/internal/watch"
)

func newModuleCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Manage the course module content",
	}
	cmd.AddCommand(newModuleSetCmd(opts), newModuleShowCmd(opts), newModuleWatchCmd(opts))
	return cmd
}

func newModuleSetCmd(opts *rootOptions) *cobra.Command {
	var text string
	var files []string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the module content from text or uploaded files",
		Long: `Sets the module stage input. A changed fingerprint immediately marks
every dependent artifact (alignment verdicts, question sets, export) stale.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && len(files) == 0 {
				return errors.New("need --text or at least one --file")
			}
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				var (
					mc  pipeline.ModuleContent
					err error
				)
				if len(files) > 0 {
					var fails []extract.Failure
					mc, fails, err = a.orch.SetModuleFromFiles(ctx, a.ex, files)
					for i := range fails {
						printf("skipped: %v", &fails[i])
					}
				} else {
					mc, err = a.orch.SetModuleContent(text, nil)
				}
				if err != nil {
					return err
				}
				printf("module set: %d tokens, fingerprint %s", mc.Tokens, mc.Fingerprint.Short())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "module content as inline text")
	cmd.Flags().StringSliceVar(&files, "file", nil, "course file to extract (.txt, .pdf, .docx, .pptx); repeatable")
	return cmd
}

func newModuleShowCmd(opts *rootOptions) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current module content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, false, func(ctx context.Context, a *app) error {
				mc := a.orch.Module()
				if !mc.IsSet() {
					printf("no module content set")
					return nil
				}
				printf("tokens: %d  fingerprint: %s  files: %v", mc.Tokens, mc.Fingerprint.Short(), mc.Files)
				if full {
					printf("%s", mc.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print the full module text")
	return cmd
}

func newModuleWatchCmd(opts *rootOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and re-apply its files as module content on change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				w := watch.New(args[0], a.orch, a.ex, debounce, a.log)
				printf("watching %s (ctrl-c to stop)", args[0])
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "settle time before re-extracting")
	return cmd
}
