package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridex/veridex/internal/model"
)

var chatTimeout time.Duration

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Discuss the most recent fact-check result",
	Long: `Chat starts an interactive follow-up conversation about the most
recent result in history. Each reply is grounded in that result's
verdict, explanation, and sources.

Requires a reachable backend; there is no offline chat.

Example:
  veridex check "The moon landing was staged"
  veridex chat`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 45*time.Second, "per-message timeout")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	recent, err := a.store.List(1)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	var factCheck *model.AnalysisResult
	if len(recent) > 0 {
		factCheck = &recent[0]
		fmt.Fprintf(os.Stderr, "Discussing: %q (%s)\n", truncateClaim(factCheck.InputText), factCheck.Verdict)
	} else {
		fmt.Fprintln(os.Stderr, "No recent fact-check in history; starting an open conversation.")
	}
	fmt.Fprintln(os.Stderr, "Type a question, or \"exit\" to quit.")
	fmt.Fprintln(os.Stderr)

	var conversation []model.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		resp, err := a.client.ContinueChat(ctx, model.ChatRequest{
			FactCheckContext: factCheck,
			UserMessage:      line,
			History:          conversation,
		})
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "chat failed: %v\n", err)
			continue
		}

		fmt.Printf("\n%s\n\n", resp.Message)
		conversation = append(conversation,
			model.ChatMessage{Role: "user", Content: line},
			model.ChatMessage{Role: "assistant", Content: resp.Message})
	}

	return scanner.Err()
}
