package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"design-studio/internal/editor/export"
	"design-studio/internal/editor/models"
	"design-studio/internal/editor/render"
	"design-studio/internal/editor/session"
	studio "design-studio/internal/studio/models"
	"design-studio/internal/studio/repository"
	"design-studio/internal/studio/service"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// ============================================================
// export
// ============================================================

func newExportCommand(a *app) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Write a project as JSON, HTML or SVG",
		Long: `Export renders the saved element list of a project. The file is named
after the project unless --out is given.`,
		Example: `  studioctl export 0b6f... --format svg
  studioctl export 0b6f... --format html --out poster.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var project *studio.Project
			err := a.withRepo(cmd.Context(), func(repo *repository.Repository) error {
				var err error
				project, err = repo.GetProject(cmd.Context(), args[0])
				return err
			})
			if err != nil {
				return fmt.Errorf("project %s: %w", args[0], err)
			}

			data, err := renderProject(a, project.Name, project.Elements, format)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = project.Name + "." + strings.ToLower(format)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(a.out, "wrote %s (%s, %d elements)\n", outPath, humanize.Bytes(uint64(len(data))), len(project.Elements))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, html or svg")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default <project name>.<format>)")
	return cmd
}

func renderProject(a *app, name string, elements []models.Element, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return export.JSON(elements)
	case "html":
		return []byte(export.HTML(name, a.canvas(), elements)), nil
	case "svg":
		measurer, err := render.NewTextMeasurer()
		if err != nil {
			return nil, err
		}
		sizer := session.Measured(a.canvas(), measurer, elements)
		return []byte(export.SVG(a.canvas(), elements, sizer)), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// ============================================================
// import
// ============================================================

func newImportCommand(a *app) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Create a project from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			return a.withRepo(cmd.Context(), func(repo *repository.Repository) error {
				user, err := repo.GetUserByEmail(cmd.Context(), email)
				if err != nil {
					return fmt.Errorf("user %s: %w", email, err)
				}

				project, err := service.NewProjects(repo).Import(cmd.Context(), user.ID, name, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "imported %q as %s (%d elements)\n", project.Name, project.ID, len(project.Elements))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "owner of the new project")
	cmd.Flags().StringVar(&name, "name", "", "project name (default file name)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
