// Package synccmder provides the sync command for bulk-ingesting a
// transcript file into the memory service.
package synccmder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberco/recall/cmd/recall/wiring"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/cliui"
	"github.com/emberco/recall/pkg/eventstream/nop"
	zaplogger "github.com/emberco/recall/pkg/logger"
	"github.com/emberco/recall/pkg/syncer"
	"github.com/emberco/recall/pkg/transcript"
)

type syncCommander struct {
	characterID string
	chatID      string
	batchSize   int
	pacingMs    int
	serviceURL  string
}

const syncLongDesc string = `Bulk-ingest a chat transcript into the memory service.

The transcript is a JSONL file with one message object per line. Messages are
submitted in paced batches; entries whose body is empty after trimming are
skipped.

Examples:
  recall sync --character vela --chat chat-12 transcript.jsonl
  recall sync --character vela --chat chat-12 --batch-size 20 transcript.jsonl`

const syncShortDesc string = "Bulk-ingest a transcript file"

func NewSyncCmd() *cobra.Command {
	cmder := &syncCommander{}

	cmd := &cobra.Command{
		Use:   "sync <transcript.jsonl>",
		Short: syncShortDesc,
		Long:  syncLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), args[0], configDir, debug)
		},
	}

	cmd.Flags().StringVarP(&cmder.characterID, "character", "c", "", "Character ID to ingest under")
	cmd.Flags().StringVar(&cmder.chatID, "chat", "", "Chat ID to ingest under")
	cmd.Flags().IntVar(&cmder.batchSize, "batch-size", 0, "Messages per batch (default from settings)")
	cmd.Flags().IntVar(&cmder.pacingMs, "pacing-ms", 0, "Delay between batches in milliseconds (default from settings)")
	cmd.Flags().StringVarP(&cmder.serviceURL, "service-url", "u", "", "Memory service base URL (default from settings)")

	return cmd
}

func (c *syncCommander) run(ctx context.Context, path, configDir string, debug bool) error {
	scope := chat.Scope{CharacterID: c.characterID, ChatID: c.chatID}
	if !scope.Active() {
		return fmt.Errorf("both --character and --chat are required")
	}

	s, err := wiring.LoadSettings(configDir)
	if err != nil {
		return err
	}

	zlog := zaplogger.NewLogger(debug)
	defer zlog.Sync()

	log := zaplogger.New(zaplogger.WithPretty(true), zaplogger.WithDebug(debug))

	service := wiring.NewGateway(s, c.serviceURL, zlog)

	batchSize := c.batchSize
	if batchSize <= 0 {
		batchSize = s.Sync.BatchSize
	}
	pacingMs := c.pacingMs
	if pacingMs <= 0 {
		pacingMs = s.Sync.PacingMs
	}

	messages, err := transcript.Load(path)
	if err != nil {
		return err
	}
	log.Debug("transcript loaded", "path", path, "messages", len(messages))

	pipeline := syncer.NewPipeline(service, nop.NewPublisher(), zlog, syncer.Config{
		BatchSize: batchSize,
		Pacing:    time.Duration(pacingMs) * time.Millisecond,
	})

	var result *syncer.Result
	if err := cliui.Step(os.Stdout, fmt.Sprintf("Syncing %d messages", len(messages)), func() error {
		var syncErr error
		result, syncErr = pipeline.Sync(ctx, scope, messages)
		return syncErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n\n", cliui.SuccessMark, result.Summary())

	return nil
}
