package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/api"
	"github.com/mongoose-kitchen/mongoose/internal/cli/config"
	"github.com/mongoose-kitchen/mongoose/internal/database"
	"github.com/mongoose-kitchen/mongoose/internal/logging"
	"github.com/mongoose-kitchen/mongoose/internal/orm/transaction"
	"github.com/mongoose-kitchen/mongoose/internal/web/router"
	"github.com/mongoose-kitchen/mongoose/internal/web/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Open the database, mount the kitchen routes and serve until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			logger := logging.New(cfg.Log)
			defer logger.Sync()

			return serve(commandContext(cmd), cfg, logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	manager := transaction.NewManager(db.DB, transaction.WithLogger(logger))

	r := router.NewRouter()
	newHandler(cfg, db, logger).Mount(r, manager)

	srvConfig := server.DefaultConfig(r)
	srvConfig.Address = cfg.Server.Address()
	srvConfig.ReadTimeout = cfg.Server.ReadTimeout
	srvConfig.WriteTimeout = cfg.Server.WriteTimeout
	srvConfig.IdleTimeout = cfg.Server.IdleTimeout

	srv, err := server.New(srvConfig)
	if err != nil {
		db.Close()
		return err
	}

	shutdown := server.NewGracefulShutdown(srv, &server.ShutdownConfig{
		Timeout: cfg.Server.ShutdownTimeout,
		Logger:  logger,
	})
	shutdown.RegisterHook(func(ctx context.Context) error {
		return db.Close()
	})

	logger.Info("starting mongoose",
		zap.String("env", cfg.Env),
		zap.String("addr", srvConfig.Address),
		zap.String("driver", db.Driver),
	)
	return shutdown.Start(ctx)
}

func newHandler(cfg *config.Config, db *database.DB, logger *zap.Logger) *api.Handler {
	return api.New(api.Config{
		Dialect:        db.Dialect,
		Logger:         logger,
		ProbeTables:    cfg.Database.ProbeTables,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodySize:    cfg.Server.MaxBodySize,
	})
}
