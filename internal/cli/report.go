package cli

import (
	"fmt"
	"time"

	"github.com/actionsum/meetnotes/internal/reporter"
	"github.com/actionsum/meetnotes/pkg/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "report [day|week|month]",
		Short:     "Summarize meeting time for a period",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			period := "day"
			if len(args) > 0 {
				period = args[0]
			}
			jsonOutput, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, repo, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			rep := reporter.New(repo)
			report, err := rep.GenerateReport(period)
			if err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				s, err := rep.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			fmt.Fprint(out, rep.FormatReportText(report))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}

// maxHistoryHours bounds history --hours to a range time.Duration can hold
const maxHistoryHours = 24 * 366

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent dispatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, _ := cmd.Flags().GetInt("hours")
			if hours <= 0 {
				return fmt.Errorf("--hours must be positive")
			}
			if hours > maxHistoryHours {
				return fmt.Errorf("--hours must not exceed %d", maxHistoryHours)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, repo, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			now := time.Now()
			events, err := repo.GetDispatchesSince(now.Add(-time.Duration(hours) * time.Hour))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintf(out, "No dispatches in the last %dh\n", hours)
				return nil
			}

			for _, e := range events {
				outcome := okStyle.Render("ok")
				if !e.Success {
					outcome = failedStyle.Render(fmt.Sprintf("failed (%s): %s", e.Stage, e.ErrorMsg))
				}
				fmt.Fprintf(out, "%s  %-10s %-24s %s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"),
					utils.FormatAgo(e.Timestamp, now),
					e.AppName,
					outcome)
			}
			return nil
		},
	}
	cmd.Flags().Int("hours", 24, "How far back to look")
	return cmd
}
