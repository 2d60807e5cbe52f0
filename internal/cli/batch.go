package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridex/veridex/internal/worker"
)

var (
	batchConcurrency int
	batchLocal       bool
	batchJSON        bool
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fact-check multiple claims from a file in parallel",
	Long: `Batch checks claims concurrently:
- Read claims from input file (one per line, # comments skipped)
- Check claims in parallel with configurable worker count
- Repeated claims within the file are deduplicated
- Every completed check lands in history

Example:
  veridex batch claims.txt
  veridex batch claims.txt --concurrency 8
  veridex batch claims.txt --local --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().BoolVar(&batchLocal, "local", false, "skip the backend and analyze locally")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print results as JSON")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	if batchConcurrency > 0 {
		cfg.Concurrency.Workers = batchConcurrency
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
		fmt.Fprintf(os.Stderr, "Workers:    %d\n\n", cfg.Concurrency.Workers)
	}

	processor := worker.NewBatchProcessor(a.service, cfg.Concurrency.Workers, batchLocal)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	if batchJSON {
		return printJSON(results)
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", truncateClaim(result.Claim), result.Err)
			continue
		}
		successCount++
		fmt.Printf("%-14s %3.0f%%  %s\n",
			strings.ToUpper(string(result.Result.Verdict)),
			result.Result.ConfidenceScore*100,
			truncateClaim(result.Claim))
	}

	fmt.Fprintf(os.Stderr, "\nChecked %d claims: %d succeeded, %d failed\n",
		len(results), successCount, failureCount)
	return nil
}

// truncateClaim shortens a claim for one-line display, cutting on a
// rune boundary so multi-byte text stays valid.
func truncateClaim(claim string) string {
	runes := []rune(claim)
	if len(runes) > 80 {
		return string(runes[:77]) + "..."
	}
	return claim
}
