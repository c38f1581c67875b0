package main

import (
	"context"

	"github.com/spf13/cobra"

	"questgen/internal/artifact"
	"questgen/internal/pipeline"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the freshness of every stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, false, func(ctx context.Context, a *app) error {
				st := a.orch.Status()
				if st.Module.Set {
					printf("module: %d tokens, fingerprint %s", st.Module.Tokens, st.Module.Fingerprint)
				} else {
					printf("module: not set")
				}
				if len(st.Objectives) == 0 {
					printf("objectives: none")
				}
				for _, os := range st.Objectives {
					printf("%s  [%s]  %s", shortID(os.Objective.ID), os.Objective.Level, os.Objective.Text)
					printf("    alignment: %-7s questions: %s%s",
						describe(os.Alignment, os.AlignmentCurrent),
						describe(os.Questions, os.QuestionsCurrent),
						editedSuffix(os),
					)
				}
				printf("export: %s", st.Export)
				return nil
			})
		},
	}
}

// describe renders a state, flagging the snapshot-restored edge case where
// the marker says fresh but the fingerprint no longer matches.
func describe(state artifact.State, current bool) string {
	if state == artifact.Fresh && !current {
		return "stale"
	}
	return state.String()
}

func editedSuffix(os pipeline.ObjectiveStatus) string {
	if os.Edited {
		return " (edited)"
	}
	return ""
}
