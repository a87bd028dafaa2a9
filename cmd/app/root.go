package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/babelcloud/gbox/packages/relay/config"
	historySvc "github.com/babelcloud/gbox/packages/relay/internal/history/service"
	miscSvc "github.com/babelcloud/gbox/packages/relay/internal/misc/service"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "relay",
		Short: "Chat-driven browser relay",
		Long: "relay drives a shared Chromium session: each chat message is sent with a screenshot\n" +
			"to a multimodal model, the model's command is executed on the page and the new\n" +
			"screen is returned.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCommand(), newMigrateCommand(), newVersionCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Launch the browser and serve the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the history table in the configured database",
		Example: `  DATABASE_URL=postgres://relay@localhost/relay relay migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := miscSvc.New(nil).GetVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "relay %s (commit %s, built %s, %s %s/%s)\n",
				info.Version, info.GitCommit, info.FormattedTime, info.GoVersion, info.OS, info.Arch)
		},
	}
}

func runMigrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetInstance()
	log := logger.New()
	log.SetLevelName(cfg.Log.Level)

	if cfg.History.DSN == "" {
		return fmt.Errorf("no database configured: set DATABASE_URL or history.dsn")
	}
	store, err := historySvc.Connect(ctx, cfg.History.DSN, cfg.History.Table, log)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Migrate(ctx)
}
