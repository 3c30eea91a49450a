// Package recallcmder
package recallcmder

import (
	addcmder "github.com/emberco/recall/cmd/recall/add"
	configcmder "github.com/emberco/recall/cmd/recall/config"
	forgetcmder "github.com/emberco/recall/cmd/recall/forget"
	querycmder "github.com/emberco/recall/cmd/recall/query"
	recentcmder "github.com/emberco/recall/cmd/recall/recent"
	servecmder "github.com/emberco/recall/cmd/recall/serve"
	statuscmder "github.com/emberco/recall/cmd/recall/status"
	synccmder "github.com/emberco/recall/cmd/recall/sync"
	"github.com/spf13/cobra"
)

const recallLongDesc string = `Recall is a memory bridge for LLM chat hosts.

It captures conversational turns into an external memory service and injects
relevant memories back into future generations.

Run the bridge using:
  recall serve         Run the bridge server

Work with memories directly:
  recall add           Store a memory
  recall query         Search stored memories
  recall recent        Show the recent-message window
  recall sync          Bulk-ingest a transcript file
  recall forget        Delete memories
  recall status        Show memory service status`

const recallShortDesc string = "Recall - chat memory bridge"

func NewRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: recallShortDesc,
		Long:  recallLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .recall/ settings directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(addcmder.NewAddCmd())
	cmd.AddCommand(querycmder.NewQueryCmd())
	cmd.AddCommand(recentcmder.NewRecentCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(forgetcmder.NewForgetCmd())
	cmd.AddCommand(synccmder.NewSyncCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
