// Package cli wires the command surface: flags, logging, and the run
// orchestration.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mydehq/plextitler/internal/ui"
	"github.com/spf13/cobra"
)

// Version is injected at build time.
var Version = "dev"

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

var (
	flagConfig   string
	flagURL      string
	flagToken    string
	flagUsername string
	flagPassword string
	flagDryRun   bool
)

// RootCmd is the plextitler command.
var RootCmd = &cobra.Command{
	Use:   "plextitler",
	Short: "Generate titles for Plex media items with an LLM",
	Long: `plextitler connects to a Plex server and uses a language model to
generate titles for media items with unlocked title fields, based on
their filenames.

Authentication methods (in order of precedence):
  1. Direct: --url/--token
  2. Flags: --username/--password
  3. Environment: PLEX_USERNAME / PLEX_PASSWORD
  4. Prompted interactively (with cached-token reuse)

The AI configuration (endpoint, model, system prompt, temperature) is
read from a YAML config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTitler,
}

func init() {
	RootCmd.Version = Version
	RootCmd.Flags().StringVarP(&flagConfig, "config", "c", "config.yaml", "path to YAML config file")
	RootCmd.Flags().StringVar(&flagURL, "url", "", "Plex server URL for direct connection")
	RootCmd.Flags().StringVar(&flagToken, "token", "", "Plex token for direct connection")
	RootCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Plex.tv username")
	RootCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Plex.tv password")
	RootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "preview changes without applying them")

	ui.SetLogger(logger)
	ui.ConfigureLoggerStyles()
}

// Execute runs the root command. Cancellation exits zero with a short
// notice; every other failure prints one diagnostic and exits non-zero.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			fmt.Println()
			logger.Info(StyleDim.Render("Cancelled."))
			os.Exit(0)
		}
		logger.Error(err.Error())
		os.Exit(1)
	}
}
