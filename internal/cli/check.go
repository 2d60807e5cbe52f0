package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridex/veridex/internal/model"
)

var (
	checkSourceURL string
	checkLocal     bool
	checkJSON      bool
	checkTimeout   time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Fact-check a single claim",
	Long: `Check validates and sanitizes a claim, then submits it for analysis:
- Rejects claims that are too short, too long, harmful, or spam
- Serves repeated claims from the response cache
- Degrades to a conservative local verdict when the backend is down
- Records the result in history

Example:
  veridex check "The Eiffel Tower was completed in 1889"
  veridex check "Drinking bleach cures covid" --source-url https://example.com/post
  veridex check "Aliens built the pyramids" --local --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkSourceURL, "source-url", "", "URL where the claim was seen")
	checkCmd.Flags().BoolVar(&checkLocal, "local", false, "skip the backend and analyze locally")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 45*time.Second, "overall check timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg := loadConfig()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", claim)
		fmt.Fprintf(os.Stderr, "Backend:  %s\n\n", cfg.API.BaseURL)
	}

	result, err := a.service.Check(ctx, claim, checkSourceURL, checkLocal)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if checkJSON {
		return printJSON(result)
	}
	printResult(result)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(result *model.AnalysisResult) {
	fmt.Printf("Verdict:    %s\n", strings.ToUpper(string(result.Verdict)))
	fmt.Printf("Confidence: %.0f%%\n", result.ConfidenceScore*100)
	if result.Explanation != "" {
		fmt.Printf("\n%s\n", result.Explanation)
	}
	if len(result.KeyPoints) > 0 {
		fmt.Printf("\nKey points:\n")
		for _, point := range result.KeyPoints {
			fmt.Printf("  - %s\n", point)
		}
	}
	if len(result.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for _, src := range result.Sources {
			fmt.Printf("  - %s\n", src)
		}
	}
	fmt.Printf("\n")
	if result.IsFromCache {
		fmt.Printf("(cached result")
	} else {
		fmt.Printf("(analyzed %s", result.AnalyzedAt.Format(time.RFC3339))
	}
	if result.ModelVersion != "" {
		fmt.Printf(", model %s", result.ModelVersion)
	}
	fmt.Printf(")\n")
}
