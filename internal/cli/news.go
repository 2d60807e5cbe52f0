package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridex/veridex/internal/model"
)

var (
	newsCategory string
	newsQuery    string
	newsSortBy   string
	newsPage     int
	newsJSON     bool
	newsTimeout  time.Duration
)

// newsCmd represents the news command
var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Browse current headlines",
	Long: `News fetches headlines from the backend aggregator. When the backend
is unreachable, headlines come straight from the publishers' RSS feeds.

Example:
  veridex news
  veridex news --category technology
  veridex news --query "election results" --sort-by publishedAt`,
	RunE: runNews,
}

func init() {
	rootCmd.AddCommand(newsCmd)

	newsCmd.Flags().StringVar(&newsCategory, "category", "general", "headline category (general, business, sports, technology)")
	newsCmd.Flags().StringVar(&newsQuery, "query", "", "search headlines instead of browsing a category")
	newsCmd.Flags().StringVar(&newsSortBy, "sort-by", "", "search sort order (relevancy, popularity, publishedAt)")
	newsCmd.Flags().IntVar(&newsPage, "page", 1, "result page")
	newsCmd.Flags().BoolVar(&newsJSON, "json", false, "print the feed as JSON")
	newsCmd.Flags().DurationVar(&newsTimeout, "timeout", 45*time.Second, "overall fetch timeout")
}

func runNews(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), newsTimeout)
	defer cancel()

	a, err := newApp(loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	var feed *model.NewsFeed
	if newsQuery != "" {
		feed, err = a.news.Search(ctx, newsQuery, newsSortBy, newsPage)
	} else {
		feed, err = a.news.TopHeadlines(ctx, newsCategory, newsPage)
	}
	if err != nil {
		return fmt.Errorf("fetch news: %w", err)
	}

	if newsJSON {
		return printJSON(feed)
	}

	if len(feed.Articles) == 0 {
		fmt.Println("No articles found.")
		return nil
	}

	for _, article := range feed.Articles {
		age := ""
		if !article.PublishedAt.IsZero() {
			age = fmt.Sprintf(" (%s)", humanizeAge(time.Since(article.PublishedAt)))
		}
		fmt.Printf("%s%s\n", article.Title, age)
		fmt.Printf("    %s | %s\n", article.Source, article.URL)
		if verbose && article.Summary != "" {
			fmt.Printf("    %s\n", article.Summary)
		}
		fmt.Println()
	}

	fmt.Fprintf(os.Stderr, "%d of %d articles", len(feed.Articles), feed.TotalCount)
	if feed.HasMore {
		fmt.Fprintf(os.Stderr, " (use --page %d for more)", newsPage+1)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func humanizeAge(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
