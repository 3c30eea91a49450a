// Package statuscmder provides the status command for showing memory service
// health and counts.
package statuscmder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/cmd/recall/wiring"
	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/logger"
)

type statusCommander struct {
	serviceURL string
}

const statusLongDesc string = `Show memory service status.

Probes the configured memory service and reports stored memory counts.

Examples:
  recall status
  recall status --service-url http://127.0.0.1:5000`

const statusShortDesc string = "Show memory service status"

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.serviceURL, "service-url", "u", "", "Memory service base URL (default from settings)")

	return cmd
}

func (c *statusCommander) run(ctx context.Context, configDir string, debug bool) error {
	s, err := wiring.LoadSettings(configDir)
	if err != nil {
		return err
	}

	zlog := logger.NewLogger(debug)
	defer zlog.Sync()

	service := wiring.NewGateway(s, c.serviceURL, zlog)

	var resp *gateway.StatusResponse
	if err := cliui.Step(os.Stdout, "Checking memory service", func() error {
		var statusErr error
		resp, statusErr = service.Status(ctx)
		return statusErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s\n", cliui.KV("Total memories", strconv.Itoa(resp.TotalMemories)))
	if resp.CharacterMemories > 0 {
		fmt.Printf("  %s\n", cliui.KV("Character memories", strconv.Itoa(resp.CharacterMemories)))
	}
	if resp.ChatMemories > 0 {
		fmt.Printf("  %s\n", cliui.KV("Chat memories", strconv.Itoa(resp.ChatMemories)))
	}
	fmt.Println()

	return nil
}
