package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskhub/taskhub/internal/storage/sqlite"
	"github.com/taskhub/taskhub/internal/storage/sqlite/migrations"
)

// MigrateCommand runs the embedded schema migrations.
type MigrateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	down bool
}

// NewMigrateCommand returns the migrate command.
func NewMigrateCommand(rootCmd *RootCommand, app *kingpin.Application) *MigrateCommand {
	c := &MigrateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("migrate", "Run database schema migrations.")
	c.Cmd.Flag("down", "Revert migrations instead of applying them.").BoolVar(&c.down)

	return c
}

func (c MigrateCommand) Name() string { return c.Cmd.FullCommand() }

func (c MigrateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	db, err := sqlite.Open(c.rootCmd.DBPath)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer db.Close()

	migrator, err := migrations.NewMigrator(db, logger)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if c.down {
		if err := migrator.Down(ctx); err != nil {
			return fmt.Errorf("could not revert migrations: %w", err)
		}
		logger.Infof("Migrations reverted")
		return nil
	}

	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	logger.Infof("Migrations applied")

	return nil
}
