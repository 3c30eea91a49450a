// Package forgetcmder provides the forget command for deleting memories.
package forgetcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/cmd/recall/wiring"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/logger"
)

type forgetCommander struct {
	characterID string
	chatID      string
	yes         bool
	serviceURL  string
}

const forgetLongDesc string = `Delete stored memories.

With scope flags, deletes only the memories for that character and chat.
Without them, deletes EVERYTHING. Deletion is permanent, so --yes is required.

Examples:
  recall forget --character vela --chat chat-12 --yes
  recall forget --yes`

const forgetShortDesc string = "Delete stored memories"

func NewForgetCmd() *cobra.Command {
	cmder := &forgetCommander{}

	cmd := &cobra.Command{
		Use:   "forget",
		Short: forgetShortDesc,
		Long:  forgetLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.characterID, "character", "c", "", "Character ID to delete memories for")
	cmd.Flags().StringVar(&cmder.chatID, "chat", "", "Chat ID to delete memories for")
	cmd.Flags().BoolVarP(&cmder.yes, "yes", "y", false, "Confirm deletion")
	cmd.Flags().StringVarP(&cmder.serviceURL, "service-url", "u", "", "Memory service base URL (default from settings)")

	return cmd
}

func (c *forgetCommander) run(ctx context.Context, configDir string, debug bool) error {
	scope := chat.Scope{CharacterID: c.characterID, ChatID: c.chatID}

	if !c.yes {
		if scope.Active() {
			return fmt.Errorf("deleting memories for %s/%s is permanent; re-run with --yes to confirm", scope.CharacterID, scope.ChatID)
		}
		return fmt.Errorf("this would delete ALL memories; re-run with --yes to confirm")
	}

	s, err := wiring.LoadSettings(configDir)
	if err != nil {
		return err
	}

	zlog := logger.NewLogger(debug)
	defer zlog.Sync()

	service := wiring.NewGateway(s, c.serviceURL, zlog)

	var resp *gateway.DeleteResponse
	if err := cliui.Step(os.Stdout, "Deleting memories", func() error {
		var deleteErr error
		resp, deleteErr = service.Delete(ctx, scope)
		return deleteErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s\n\n", cliui.KV("Deleted", strconv.Itoa(resp.Deleted)))

	return nil
}
