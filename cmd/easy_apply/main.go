// Package main provides the entry point for the LinkedIn Easy Apply agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "easy_apply",
	Short: "Apply to LinkedIn Easy Apply jobs with a browser agent",
	Long: `easy_apply drives a Chrome session with an LLM-backed agent that works through
LinkedIn Easy Apply forms using your resume PDF and profile.

Configuration is read from the environment (and a .env file if present).
Running without a subcommand starts an apply run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runApplyCmd,
}

var (
	flagVerbose     bool
	flagApplyNumber int
	flagHeadless    bool
	flagMaxSteps    int
	flagResumeText  bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed debug information (overrides VERBOSE)")
	flags.IntVarP(&flagApplyNumber, "apply-number", "n", 0, "Maximum number of applications (overrides APPLY_NUMBER)")
	flags.BoolVar(&flagHeadless, "headless", false, "Run Chrome headless (overrides HEADLESS)")
	flags.IntVar(&flagMaxSteps, "max-steps", 0, "Agent step budget (overrides MAX_STEPS)")
	flags.BoolVar(&flagResumeText, "resume-text", false, "Include the extracted resume text in the task")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
