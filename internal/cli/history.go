package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyClear bool
	historyJSON  bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past fact-check results",
	Long: `History lists recorded fact-check results, most recent first. The
history is bounded; once full, new results evict the oldest.

Results live in memory unless history.path points at a SQLite file.

Example:
  veridex history
  veridex history --limit 5 --json
  veridex history --clear`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum results to show (0 shows everything)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded results")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print results as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	if historyClear {
		if err := a.store.Clear(); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	results, err := a.store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	if historyJSON {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No results recorded yet.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%2d. [%s] %s\n", i+1,
			strings.ToUpper(string(result.Verdict)),
			truncateClaim(result.InputText))
		fmt.Printf("    confidence %.0f%%, %s\n",
			result.ConfidenceScore*100,
			result.AnalyzedAt.Format(time.RFC3339))
	}
	return nil
}
