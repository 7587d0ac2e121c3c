package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal reports whether stdin is interactive
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded dispatches, sessions and errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			if olderThan < 0 {
				return fmt.Errorf("--older-than must not be negative")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				if !isTerminal() {
					return fmt.Errorf("refusing to clear history without --yes on a non-interactive terminal")
				}
				what := "all recorded history"
				if olderThan > 0 {
					what = fmt.Sprintf("history older than %v", olderThan)
				}
				if !confirm(cmd.InOrStdin(), out, fmt.Sprintf("This will delete %s. Are you sure? (yes/no): ", what)) {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
			}

			db, repo, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if olderThan > 0 {
				n, err := repo.DeleteOlderThan(time.Now().Add(-olderThan))
				if err != nil {
					return fmt.Errorf("failed to prune history: %w", err)
				}
				fmt.Fprintf(out, "Deleted %d record(s)\n", n)
				return nil
			}

			if err := repo.Clear(); err != nil {
				return fmt.Errorf("failed to clear database: %w", err)
			}
			fmt.Fprintln(out, "Database cleared successfully")
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().Duration("older-than", 0, "Only delete records older than this, e.g. 720h")
	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}
