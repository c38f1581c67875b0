package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"questgen/internal/bloom"
	"questgen/internal/pipeline"
)

func newLOCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lo",
		Short: "Manage learning objectives",
	}
	cmd.AddCommand(
		newLOAddCmd(opts),
		newLOListCmd(opts),
		newLOUpdateCmd(opts),
		newLOAcceptCmd(opts),
		newLORemoveCmd(opts),
	)
	return cmd
}

// resolveObjective matches a full id or a unique prefix (status output
// shows the short form).
func resolveObjective(a *app, arg string) (pipeline.Objective, error) {
	var match *pipeline.Objective
	for _, obj := range a.orch.Objectives() {
		if obj.ID == arg {
			return obj, nil
		}
		if strings.HasPrefix(obj.ID, arg) {
			if match != nil {
				return pipeline.Objective{}, fmt.Errorf("objective id %q is ambiguous", arg)
			}
			o := obj
			match = &o
		}
	}
	if match == nil {
		return pipeline.Objective{}, fmt.Errorf("%w: %s", pipeline.ErrObjectiveNotFound, arg)
	}
	return *match, nil
}

func newLOAddCmd(opts *rootOptions) *cobra.Command {
	var level string
	var count int
	cmd := &cobra.Command{
		Use:   "add <objective text>",
		Short: "Add a learning objective",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := bloom.Parse(level)
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				obj, err := a.orch.AddObjective(strings.Join(args, " "), lvl, count)
				if err != nil {
					return err
				}
				printf("added %s  [%s, %d questions]  %s", shortID(obj.ID), obj.Level, obj.QuestionCount, obj.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", string(bloom.Understand), "bloom level: "+strings.Join(bloom.Names(), ", "))
	cmd.Flags().IntVar(&count, "count", pipeline.DefaultQuestionCount, "questions to generate for this objective")
	return cmd
}

func newLOListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learning objectives",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, false, func(ctx context.Context, a *app) error {
				objectives := a.orch.Objectives()
				if len(objectives) == 0 {
					printf("no learning objectives yet")
					return nil
				}
				for _, obj := range objectives {
					printf("%s  [%s, %d questions]  %s", shortID(obj.ID), obj.Level, obj.QuestionCount, obj.Text)
					if obj.AcceptedText != "" {
						printf("          accepted: %s", obj.AcceptedText)
					}
				}
				return nil
			})
		},
	}
}

func newLOUpdateCmd(opts *rootOptions) *cobra.Command {
	var text, level string
	var count int
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an objective's text, level or question count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				obj, err := resolveObjective(a, args[0])
				if err != nil {
					return err
				}
				var upd pipeline.ObjectiveUpdate
				if cmd.Flags().Changed("text") {
					upd.Text = &text
				}
				if cmd.Flags().Changed("level") {
					lvl, err := bloom.Parse(level)
					if err != nil {
						return err
					}
					upd.Level = &lvl
				}
				if cmd.Flags().Changed("count") {
					upd.Count = &count
				}
				updated, err := a.orch.UpdateObjective(obj.ID, upd)
				if err != nil {
					return err
				}
				printf("updated %s  [%s, %d questions]  %s", shortID(updated.ID), updated.Level, updated.QuestionCount, updated.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "replacement objective text")
	cmd.Flags().StringVar(&level, "level", "", "bloom level: "+strings.Join(bloom.Names(), ", "))
	cmd.Flags().IntVar(&count, "count", 0, "questions to generate")
	return cmd
}

func newLOAcceptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <id>",
		Short: "Accept the alignment verdict's suggested replacement objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				obj, err := resolveObjective(a, args[0])
				if err != nil {
					return err
				}
				updated, err := a.orch.AcceptSuggestion(obj.ID)
				if err != nil {
					return err
				}
				printf("accepted for %s: %s", shortID(updated.ID), updated.Effective())
				return nil
			})
		},
	}
}

func newLORemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a learning objective and its artifacts",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, true, func(ctx context.Context, a *app) error {
				obj, err := resolveObjective(a, args[0])
				if err != nil {
					return err
				}
				if err := a.orch.RemoveObjective(obj.ID); err != nil {
					return err
				}
				printf("removed %s", shortID(obj.ID))
				return nil
			})
		},
	}
}
