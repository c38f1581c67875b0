package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	provider   string
	dataDir    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "questgen",
		Short: "Author learning objectives and generate aligned assessment questions",
		Long: `questgen turns uploaded course material into Bloom-aligned learning
objectives and multiple-choice questions through a generative backend.
Derived results (alignment verdicts, question sets, the exported document)
are cached by input fingerprint and invalidated transitively when anything
upstream changes. Session state persists in a durable snapshot between
invocations.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: questgen.yaml if present)")
	flags.StringVar(&opts.provider, "provider", "", "generation backend: mock, gemini or openai")
	flags.StringVar(&opts.dataDir, "data-dir", "", "session data directory")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(
		newModuleCmd(opts),
		newLOCmd(opts),
		newAlignCmd(opts),
		newQuestionsCmd(opts),
		newExportCmd(opts),
		newStatusCmd(opts),
		newSnapshotCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}
