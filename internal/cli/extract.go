package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	extractJSON    bool
	extractTimeout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract article text from a URL",
	Long: `Extract pulls the readable text out of an article URL, using the
backend's extraction service with a local robots.txt-respecting
crawler as fallback.

Example:
  veridex extract https://www.thehindu.com/news/national/some-article
  veridex extract https://example.com/story --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print the content as JSON")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", time.Minute, "overall extraction timeout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	a, err := newApp(loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	content, err := a.service.ExtractURL(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if extractJSON {
		return printJSON(content)
	}

	if title := content.Metadata["title"]; title != "" {
		fmt.Printf("%s\n\n", title)
	}
	fmt.Println(content.ExtractedText)

	if verbose {
		fmt.Fprintf(os.Stderr, "\nExtracted %d characters", len(content.ExtractedText))
		if domain := content.Metadata["domain"]; domain != "" {
			fmt.Fprintf(os.Stderr, " from %s", domain)
		}
		fmt.Fprintln(os.Stderr)
	}
	return nil
}
