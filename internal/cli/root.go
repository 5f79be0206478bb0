package cli

import (
	"context"
	"fmt"
	"io"

	"design-studio/internal/common/config"
	"design-studio/internal/editor/models"
	"design-studio/internal/studio/repository"

	"github.com/spf13/cobra"
)

// ============================================================
// Root command
// ============================================================

// app holds the flags and config shared by subcommands.
type app struct {
	cfg    *config.Config
	dbPath string
	output string
	out    io.Writer
}

func (a *app) canvas() models.Size {
	return models.Size{Width: a.cfg.CanvasWidth, Height: a.cfg.CanvasHeight}
}

// NewRootCommand собирает studioctl; вывод идёт в out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{cfg: config.Load(), out: out}

	root := &cobra.Command{
		Use:   "studioctl",
		Short: "Inspect and export design studio projects",
		Long: `studioctl works directly on the studio database. It lists a user's
projects, exports them as JSON, HTML or SVG and imports JSON exports.

Stop the studio service first or point --db at a copy: open editors keep
their own state and will overwrite changes made here when they save.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&a.dbPath, "db", a.cfg.DBPath, "path to the studio database")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "output format: text, json or yaml")

	root.AddCommand(newProjectsCommand(a))
	root.AddCommand(newExportCommand(a))
	root.AddCommand(newImportCommand(a))
	return root
}

// withRepo opens the database for the duration of fn.
func (a *app) withRepo(ctx context.Context, fn func(repo *repository.Repository) error) error {
	db, err := repository.OpenSQLite(a.dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	return fn(repo)
}
