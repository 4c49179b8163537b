package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var taskCommand = &cobra.Command{
	Use:   "task",
	Short: "Print the task the agent receives, with the LinkedIn password masked",
	RunE:  runTaskCmd,
}

func init() {
	rootCmd.AddCommand(taskCommand)
}

func runTaskCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	in, err := loadInputs(cmd.Context(), s)
	if err != nil {
		return err
	}
	text, err := buildTask(s, in, flagResumeText, true)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
