package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkhang/parkhang/internal/config"
	"github.com/parkhang/parkhang/internal/logging"
	"github.com/parkhang/parkhang/internal/server"
	"github.com/parkhang/parkhang/internal/store"
	"github.com/parkhang/parkhang/internal/texts"
	"github.com/parkhang/parkhang/route"
)

type app struct {
	configFile string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "parkhang",
		Short:         "Serve texts, witnesses and annotations over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (yaml, json or toml)")
	root.AddCommand(
		a.serveCmd(),
		a.routesCmd(),
		a.migrateCmd(),
		a.seedCmd(),
	)
	return root
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			h, tree, err := server.New(a.cfg, a.log, st)
			if err != nil {
				return err
			}
			a.log.Debug("routes mounted", zap.String("table", tree.String()))
			return server.Run(ctx, a.cfg, a.log, h)
		},
	}
}

func (a *app) routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := route.PrintRoutes(a.cfg.Server.BasePath, &texts.Routes{})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(s))
			return err
		},
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("database migrated", zap.String("driver", a.cfg.Database.Driver))
			return st.Close()
		},
	}
}
