// Package querycmder provides the query command for searching stored memories.
package querycmder

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/cmd/recall/wiring"
	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/logger"
	"github.com/emberco/recall/pkg/utils"
)

type queryCommander struct {
	characterID string
	chatID      string
	allChats    bool
	topN        int
	serviceURL  string
}

const queryLongDesc string = `Search stored memories with semantic retrieval and reranking.

Results are scored by relevance. Scope flags restrict the search to a
character and chat; --all-chats widens a character search across chats.

Examples:
  recall query "crossing the river"
  recall query --character vela --chat chat-12 "the mill"
  recall query --character vela --all-chats "the mill"`

const queryShortDesc string = "Search stored memories"

func NewQueryCmd() *cobra.Command {
	cmder := &queryCommander{}

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: queryShortDesc,
		Long:  queryLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), strings.Join(args, " "), configDir, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.characterID, "character", "c", "", "Character ID to scope the search to")
	cmd.Flags().StringVar(&cmder.chatID, "chat", "", "Chat ID to scope the search to")
	cmd.Flags().BoolVar(&cmder.allChats, "all-chats", false, "Search across all chats for the character")
	cmd.Flags().IntVarP(&cmder.topN, "top-n", "n", 0, "Number of results to return (default from settings)")
	cmd.Flags().StringVarP(&cmder.serviceURL, "service-url", "u", "", "Memory service base URL (default from settings)")

	return cmd
}

func (c *queryCommander) run(ctx context.Context, text, configDir string, debug bool) error {
	s, err := wiring.LoadSettings(configDir)
	if err != nil {
		return err
	}

	zlog := logger.NewLogger(debug)
	defer zlog.Sync()

	service := wiring.NewGateway(s, c.serviceURL, zlog)

	finalTopN := c.topN
	if finalTopN <= 0 {
		finalTopN = s.Context.FinalMemoryCount
	}

	var resp *gateway.QueryResponse
	if err := cliui.Step(os.Stdout, "Searching memories", func() error {
		var queryErr error
		resp, queryErr = service.Query(ctx, text, gateway.QueryParams{
			CharacterID:     c.characterID,
			ChatID:          c.chatID,
			IncludeAllChats: c.allChats,
			TopK:            -1,
			RerankFastTopN:  s.Context.FastRerankCount,
			FinalTopN:       finalTopN,
		})
		return queryErr
	}); err != nil {
		return err
	}

	if len(resp.Results) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No memories found."))
		return nil
	}

	fmt.Println()
	for i, result := range resp.Results {
		score := cliui.ScoreStyle.Render(fmt.Sprintf("%.2f", result.Score))
		preview := utils.Truncate(result.Text, 96)
		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			score,
			preview,
		)
	}
	fmt.Printf("\n  %s\n\n", cliui.KV("Token count", strconv.Itoa(resp.TokenCount)))

	return nil
}
