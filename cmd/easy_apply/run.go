package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/easy-apply-agent/internal/agent"
	"github.com/jonathan/easy-apply-agent/internal/browser"
	"github.com/jonathan/easy-apply-agent/internal/config"
	"github.com/jonathan/easy-apply-agent/internal/history"
	"github.com/jonathan/easy-apply-agent/internal/llm"
	"github.com/jonathan/easy-apply-agent/internal/observability"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Start an apply run (the default command)",
	Long: `Launches Chrome (or attaches to CDP_URL), then lets the agent apply to at most
APPLY_NUMBER jobs from the LinkedIn recommended collection.

A run that ends without reaching the limit still exits successfully; the result box
explains why it stopped.`,
	RunE: runApplyCmd,
}

func init() {
	rootCmd.AddCommand(runCommand)
}

func runApplyCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	// Step 1: Settings and private files
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	llmCfg, err := llm.NewConfig(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Step 1/4: Loading profile and resume...\n")
	in, err := loadInputs(ctx, s)
	if err != nil {
		return err
	}
	taskText, err := buildTask(s, in, flagResumeText, false)
	if err != nil {
		return err
	}

	chrome := config.ResolveChrome(s)
	printer.PrintSettings(s, chrome, llmCfg.Model)
	if s.Verbose {
		printer.PrintApplicant(in.Info, in.Resume)
	}

	// Step 2: Model and history
	fmt.Fprintf(out, "Step 2/4: Connecting to %s (%s)...\n", llmCfg.Provider, llmCfg.Model)
	client, err := llm.NewClient(ctx, llmCfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	store := openHistory(ctx, s, out)
	defer store.Close()

	// Step 3: Browser
	fmt.Fprintf(out, "Step 3/4: Starting browser...\n")
	session, err := browser.Launch(ctx, chrome, s.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	// Step 4: Agent
	fmt.Fprintf(out, "Step 4/4: Running agent (up to %d applications, %d steps)...\n", s.ApplyNumber, s.MaxSteps)
	a, err := agent.New(agent.Config{
		Task:           taskText,
		ApplyLimit:     s.ApplyNumber,
		MaxSteps:       s.MaxSteps,
		StepTimeout:    s.StepTimeout,
		AvailableFiles: []string{in.Resume.Path},
		UseVision:      s.UseVision,
		RunDir:         s.RunDir,
		Provider:       string(llmCfg.Provider),
		Secrets:        []string{in.Info.LinkedInPassword},
		Out:            out,
		Verbose:        s.Verbose,
	}, session, llm.WithRetry(client), store)
	if err != nil {
		return err
	}

	result, err := a.Run(ctx)
	if err != nil {
		return err
	}

	printer.PrintResult(result)
	return nil
}

// openHistory connects the history store, continuing without persistence when the
// database is unreachable.
func openHistory(ctx context.Context, s config.Settings, out io.Writer) history.Store {
	store, err := history.Open(ctx, s.DatabaseURL)
	if err != nil {
		fmt.Fprintf(out, "Warning: Failed to connect to database: %v\n", err)
		fmt.Fprintf(out, "Continuing without database persistence...\n")
		return history.NopStore{}
	}
	if s.Verbose && s.DatabaseURL != "" {
		fmt.Fprintf(out, "[VERBOSE] Connected to database\n")
	}
	return store
}
