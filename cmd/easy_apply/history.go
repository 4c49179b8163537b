package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/easy-apply-agent/internal/config"
	"github.com/jonathan/easy-apply-agent/internal/history"
)

var historyLimit int

var historyCommand = &cobra.Command{
	Use:   "history",
	Short: "List recently submitted applications from the database",
	RunE:  runHistoryCmd,
}

func init() {
	historyCommand.Flags().IntVar(&historyLimit, "limit", 20, "Number of applications to show")
	rootCmd.AddCommand(historyCommand)
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s := config.Load(os.Getenv)
	if s.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	store, err := history.Open(ctx, s.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	apps, err := store.RecentApplications(ctx, max(1, historyLimit))
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(apps) == 0 {
		fmt.Fprintln(out, "No applications recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECORDED\tCOMPANY\tTITLE\tURL")
	for _, app := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			app.RecordedAt.Local().Format("2006-01-02 15:04"),
			app.Company,
			app.Title,
			strings.TrimSpace(app.URL))
	}
	return w.Flush()
}
