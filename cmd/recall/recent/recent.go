// Package recentcmder provides the recent command for showing the
// recent-message window of a conversation.
package recentcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/cmd/recall/wiring"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/logger"
	"github.com/emberco/recall/pkg/utils"
)

type recentCommander struct {
	characterID string
	chatID      string
	maxMessages int
	serviceURL  string
}

const recentLongDesc string = `Show the recent-message window for a conversation.

This is the same window the context injector prepends to retrieved memories.

Examples:
  recall recent --character vela --chat chat-12
  recall recent --character vela --chat chat-12 --max 20`

const recentShortDesc string = "Show the recent-message window"

func NewRecentCmd() *cobra.Command {
	cmder := &recentCommander{}

	cmd := &cobra.Command{
		Use:   "recent",
		Short: recentShortDesc,
		Long:  recentLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.characterID, "character", "c", "", "Character ID of the conversation")
	cmd.Flags().StringVar(&cmder.chatID, "chat", "", "Chat ID of the conversation")
	cmd.Flags().IntVarP(&cmder.maxMessages, "max", "m", 0, "Maximum messages to show (default from settings)")
	cmd.Flags().StringVarP(&cmder.serviceURL, "service-url", "u", "", "Memory service base URL (default from settings)")

	return cmd
}

func (c *recentCommander) run(ctx context.Context, configDir string, debug bool) error {
	scope := chat.Scope{CharacterID: c.characterID, ChatID: c.chatID}
	if !scope.Active() {
		return fmt.Errorf("both --character and --chat are required")
	}

	s, err := wiring.LoadSettings(configDir)
	if err != nil {
		return err
	}

	zlog := logger.NewLogger(debug)
	defer zlog.Sync()

	service := wiring.NewGateway(s, c.serviceURL, zlog)

	maxMessages := c.maxMessages
	if maxMessages <= 0 {
		maxMessages = s.Context.RecentMessageCount
	}

	var resp *gateway.RecentResponse
	if err := cliui.Step(os.Stdout, "Fetching recent messages", func() error {
		var recentErr error
		resp, recentErr = service.Recent(ctx, scope, maxMessages)
		return recentErr
	}); err != nil {
		return err
	}

	if len(resp.RecentMessages) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No recent messages."))
		return nil
	}

	fmt.Println()
	for _, msg := range resp.RecentMessages {
		fmt.Printf("  %s %s\n",
			cliui.KeyStyle.Render("["+string(msg.MessageType)+"]"),
			utils.Truncate(msg.Text, 96),
		)
	}
	fmt.Println()

	return nil
}
