// Command novelmof maps MOF archive documents into typed records and stores
// them for search.
//
// Subcommands:
//
//	ingest   map and store archive files
//	watch    ingest files as they appear under the ingest root
//	map      print the record and diagnostics for one file
//	search   query stored entries
//	migrate  apply database migrations
//
// Exit codes: 0 = success, 1 = error or failed documents.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fliaght/novelmof/internal/app"
	"github.com/fliaght/novelmof/internal/config"
)

// env is the state shared by all subcommands after config is loaded.
type env struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "novelmof",
		Short:         "MOF archive ingestion and search",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.configPath)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = app.NewLogger(cfg.Log)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "config file path (YAML); falls back to CONFIG_PATH")

	cmd.AddCommand(
		ingestCmd(e),
		watchCmd(e),
		mapCmd(e),
		searchCmd(e),
		migrateCmd(e),
	)
	return cmd
}
