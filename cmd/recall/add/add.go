// Package addcmder provides the add command for storing a memory directly.
package addcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/cmd/recall/wiring"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/logger"
)

type addCommander struct {
	characterID string
	chatID      string
	messageType string
	serviceURL  string
}

const addLongDesc string = `Store a memory in the memory service.

The text is stored verbatim, optionally scoped to a character and chat so it
can be retrieved and deleted per conversation.

Examples:
  recall add "the bridge is out past the mill"
  recall add --character vela --chat chat-12 "Vela cannot swim"`

const addShortDesc string = "Store a memory"

func NewAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: addShortDesc,
		Long:  addLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), strings.Join(args, " "), configDir, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.characterID, "character", "c", "", "Character ID to scope the memory to")
	cmd.Flags().StringVar(&cmder.chatID, "chat", "", "Chat ID to scope the memory to")
	cmd.Flags().StringVarP(&cmder.messageType, "type", "t", "", "Message type (user or assistant)")
	cmd.Flags().StringVarP(&cmder.serviceURL, "service-url", "u", "", "Memory service base URL (default from settings)")

	return cmd
}

func (c *addCommander) run(ctx context.Context, text, configDir string, debug bool) error {
	s, err := wiring.LoadSettings(configDir)
	if err != nil {
		return err
	}

	zlog := logger.NewLogger(debug)
	defer zlog.Sync()

	service := wiring.NewGateway(s, c.serviceURL, zlog)

	var resp *gateway.AddResponse
	if err := cliui.Step(os.Stdout, "Storing memory", func() error {
		var addErr error
		resp, addErr = service.AddMemory(ctx, gateway.MemoryRecord{
			Text:        text,
			CharacterID: c.characterID,
			ChatID:      c.chatID,
			MessageType: chat.MessageType(c.messageType),
		})
		return addErr
	}); err != nil {
		return err
	}

	if resp.ID != "" {
		fmt.Printf("\n  %s\n\n", cliui.KV("Memory ID", cliui.DimStyle.Render(resp.ID)))
	}
	return nil
}
