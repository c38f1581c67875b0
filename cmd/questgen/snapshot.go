package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"questgen/internal/snapshot"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or rewrite the durable session snapshot",
		Long: `Every mutating command persists the session automatically; these
subcommands exist for inspection and for forcing a write after changing the
snapshot backend.`,
	}
	cmd.AddCommand(newSnapshotSaveCmd(opts), newSnapshotShowCmd(opts))
	return cmd
}

func newSnapshotSaveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the current session to the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				printf("saving session to %s backend", a.storage.Name())
				return nil
			})
		},
	}
}

func newSnapshotShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show what the configured backend holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			state, err := snapshot.Load(cmd.Context(), a.storage)
			if errors.Is(err, snapshot.ErrNotFound) {
				printf("no snapshot yet (%s backend)", a.storage.Name())
				return nil
			}
			if err != nil {
				return err
			}
			printf("backend: %s", a.storage.Name())
			printf("module: set=%t tokens=%d", state.Session.Module.IsSet(), state.Session.Module.Tokens)
			printf("objectives: %d", len(state.Session.Objectives))
			printf("artifacts: %d", len(state.Artifacts))
			for _, e := range state.Artifacts {
				printf("  %-40s %-6s %s", e.Name, e.State, e.Fingerprint.Short())
			}
			return nil
		},
	}
}
