package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/cli/ui"
	"github.com/mongoose-kitchen/mongoose/internal/database"
	"github.com/mongoose-kitchen/mongoose/internal/entity"
	"github.com/mongoose-kitchen/mongoose/internal/logging"
	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/transaction"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the database schema",
		Long:  "Probe every mapped table and report whether it has the declared columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log)
			defer logger.Sync()

			ctx := commandContext(cmd)
			db, err := database.Open(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			manager := transaction.NewManager(db.DB, transaction.WithLogger(logger))
			failed := checkSchema(ctx, manager.Session(), db.Dialect, logger, cmd.OutOrStdout(), noColor(cmd))
			if failed > 0 {
				return fmt.Errorf("%d of %d tables failed the schema check", failed, entity.Catalog().Count())
			}
			return nil
		},
	}
}

// checkSchema probes every catalog table on s, renders a report to w and
// returns the number of failing tables
func checkSchema(ctx context.Context, s *transaction.Session, d dialect.Dialect, logger *zap.Logger, w io.Writer, noColor bool) int {
	defer s.Close()

	p := ui.NewPrinter(w, noColor)
	p.Header("Schema check (" + d.String() + ")")
	table := p.Table("Table", "Columns", "Status", "Detail").StatusColumn(2)

	failed := 0
	for _, t := range entity.Catalog().List() {
		_, err := record.New[string](ctx, s, t,
			record.WithDialect(d),
			record.WithLogger(logger),
			record.WithProbe(true),
		)
		detail := ""
		if err != nil {
			failed++
			detail = err.Error()
			if rbErr := s.Rollback(); rbErr != nil {
				logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
		table.AddRow(t.Name, strconv.Itoa(len(t.Columns)), ui.StatusLabel(err == nil), detail)
	}
	table.Render()
	return failed
}
