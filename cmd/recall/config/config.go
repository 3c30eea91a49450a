// Package configcmder provides the config command for managing persistent
// recall settings stored in the .recall/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent recall settings.

Settings are stored as settings.toml in the .recall/ directory. CLI flags
always take precedence over settings file values.

Keys use dotted notation matching the TOML section structure:
  service.url, service.timeout_seconds,
  capture.auto_memory,
  context.integration, context.recent_messages, context.recent_message_count,
  context.fast_rerank_count, context.final_memory_count,
  context.use_intelligent_selection, context.min_relevance_score,
  context.max_memories, context.min_memories,
  sync.batch_size, sync.pacing_ms,
  server.listen,
  stream.enabled, stream.broker, stream.topic

Use subcommands to get, set, or list settings values:
  recall config set <key> <value>    Set a settings value
  recall config get <key>            Get a settings value
  recall config list                 List all settings values

Examples:
  recall config set service.url http://127.0.0.1:5000
  recall config set capture.auto_memory false
  recall config get context.final_memory_count
  recall config list`

const configShortDesc string = "Manage persistent recall settings"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
