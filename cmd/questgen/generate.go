package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"questgen/internal/pipeline"
)

var errNeedObjective = errors.New("pass an objective id or --all")

func newAlignCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "align [id]",
		Short: "Check objective/module alignment through the backend",
		Long: `Runs the alignment check for one objective (or --all). A stored verdict
whose input fingerprint still matches is reused without a backend call.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				targets, err := targetObjectives(a, args, all)
				if err != nil {
					return err
				}
				for _, obj := range targets {
					res, cached, err := a.orch.EnsureAlignment(ctx, obj.ID)
					if err != nil {
						return err
					}
					src := "generated"
					if cached {
						src = "cached"
					}
					printf("%s  %s (%s)", shortID(obj.ID), res.Label, src)
					for _, reason := range res.Reasons {
						printf("    - %s", reason)
					}
					if res.Suggestion != obj.Text {
						printf("    suggestion: %s", res.Suggestion)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "align every objective")
	return cmd
}

func newQuestionsCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "questions [id]",
		Short: "Generate multiple-choice questions for an objective",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				targets, err := targetObjectives(a, args, all)
				if err != nil {
					return err
				}
				for _, obj := range targets {
					res, cached, err := a.orch.EnsureQuestions(ctx, obj.ID)
					if err != nil {
						return err
					}
					src := "generated"
					if cached {
						src = "cached"
					}
					printf("%s  %d questions (%s)", shortID(obj.ID), len(res.Questions), src)
					for i, q := range res.Questions {
						printf("  %d. %s", i+1, q.Stem)
						for _, opt := range q.Options {
							marker := " "
							if opt.ID == q.CorrectOptionID {
								marker = "*"
							}
							printf("   %s %s. %s", marker, opt.ID, opt.Text)
						}
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "generate for every objective")
	cmd.AddCommand(newQuestionsEditCmd(opts))
	return cmd
}

func newQuestionsEditCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a stored question set with an author-edited JSON payload",
		Long: `Reads an edited question-set JSON document and stores it in place of the
generated one. The payload must satisfy the question-set contract as a
whole; a violation rejects the edit and keeps the stored set unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				obj, err := resolveObjective(a, args[0])
				if err != nil {
					return err
				}
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				res, err := a.orch.EditQuestions(obj.ID, json.RawMessage(raw))
				if err != nil {
					return err
				}
				printf("stored %d edited questions for %s", len(res.Questions), shortID(obj.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "edited question-set JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func targetObjectives(a *app, args []string, all bool) ([]pipeline.Objective, error) {
	if all {
		return a.orch.Objectives(), nil
	}
	if len(args) == 0 {
		return nil, errNeedObjective
	}
	obj, err := resolveObjective(a, args[0])
	if err != nil {
		return nil, err
	}
	return []pipeline.Objective{obj}, nil
}
