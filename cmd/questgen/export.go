package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"questgen/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	exportOpts := export.DefaultOptions()
	var out string
	var loIDs []string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the question sets into a Word document",
		Long: `Renders the selected objectives' question sets to a .docx file. The
rendered bytes are an artifact like any other: unchanged inputs and options
re-use the stored document instead of re-rendering.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				resolved := make([]string, 0, len(loIDs))
				for _, arg := range loIDs {
					obj, err := resolveObjective(a, arg)
					if err != nil {
						return err
					}
					resolved = append(resolved, obj.ID)
				}
				exportOpts.ObjectiveIDs = resolved

				val, cached, err := a.orch.EnsureExport(ctx, exportOpts)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, val.Docx, 0o644); err != nil {
					return err
				}
				src := "rendered"
				if cached {
					src = "reused"
				}
				printf("%s %s: %d questions, %d bytes", src, out, val.Questions, len(val.Docx))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "assessment-questions.docx", "output .docx path")
	flags.StringSliceVar(&loIDs, "lo", nil, "objective ids to include (default: all with fresh questions)")
	flags.StringVar(&exportOpts.Filter, "filter", "", `per-question filter over {stem, bloom, correct, edited}, e.g. 'bloom == "Apply"'`)
	flags.BoolVar(&exportOpts.IncludeLOs, "los", exportOpts.IncludeLOs, "include objective headings")
	flags.BoolVar(&exportOpts.IncludeBloom, "bloom", exportOpts.IncludeBloom, "include bloom levels")
	flags.BoolVar(&exportOpts.IncludeAnswerKey, "answer-key", exportOpts.IncludeAnswerKey, "highlight correct options")
	flags.BoolVar(&exportOpts.IncludeFeedback, "feedback", exportOpts.IncludeFeedback, "include per-option rationales")
	flags.BoolVar(&exportOpts.IncludeRationale, "rationale", exportOpts.IncludeRationale, "include question rationales")
	flags.BoolVar(&exportOpts.IncludeContentRef, "content-ref", exportOpts.IncludeContentRef, "include content references")
	return cmd
}
