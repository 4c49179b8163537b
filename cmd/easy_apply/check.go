package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/easy-apply-agent/internal/config"
	"github.com/jonathan/easy-apply-agent/internal/history"
	"github.com/jonathan/easy-apply-agent/internal/llm"
	"github.com/jonathan/easy-apply-agent/internal/observability"
)

var checkCommand = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and private files without starting a browser",
	Long: `Loads the environment, the profile and the resume exactly as a run would, resolves
the LLM provider and the Chrome paths, and prints the result. When DATABASE_URL is set
the database connection and migrations are checked too.`,
	RunE: runCheckCmd,
}

func init() {
	rootCmd.AddCommand(checkCommand)
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	llmCfg, err := llm.NewConfig(s)
	if err != nil {
		return err
	}
	in, err := loadInputs(ctx, s)
	if err != nil {
		return err
	}
	if _, err := buildTask(s, in, flagResumeText, true); err != nil {
		return err
	}

	printer.PrintSettings(s, config.ResolveChrome(s), llmCfg.Model)
	printer.PrintApplicant(in.Info, in.Resume)

	if s.DatabaseURL != "" {
		store, err := history.Open(ctx, s.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database check failed: %w", err)
		}
		store.Close()
		fmt.Fprintln(out, "Database: OK")
	}

	fmt.Fprintln(out, "Configuration OK")
	return nil
}
