package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"design-studio/internal/studio/repository"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ============================================================
// projects
// ============================================================

// ProjectRow is one line of the projects listing.
type ProjectRow struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Elements  int       `json:"elements" yaml:"elements"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
	Updated   string    `json:"updated" yaml:"updated"`
}

func newProjectsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects <email>",
		Short: "List a user's projects, most recently updated first",
		Example: `  studioctl projects ann@example.com
  studioctl projects ann@example.com -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd.Context(), func(repo *repository.Repository) error {
				return runProjects(cmd.Context(), a, repo, args[0])
			})
		},
	}
}

func runProjects(ctx context.Context, a *app, repo *repository.Repository, email string) error {
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user %s: %w", email, err)
	}
	projects, err := repo.ListProjects(ctx, user.ID)
	if err != nil {
		return err
	}

	rows := make([]ProjectRow, 0, len(projects))
	for _, p := range projects {
		elements, err := repo.LoadElements(ctx, p.ID)
		if err != nil {
			return err
		}
		rows = append(rows, ProjectRow{
			ID:        p.ID,
			Name:      p.Name,
			Elements:  len(elements),
			UpdatedAt: p.UpdatedAt,
			Updated:   humanize.Time(p.UpdatedAt),
		})
	}

	switch a.output {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		defer enc.Close()
		return enc.Encode(rows)
	case "text":
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	if len(rows) == 0 {
		fmt.Fprintf(a.out, "%s has no projects\n", email)
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tELEMENTS\tUPDATED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Name, r.ID, r.Elements, r.Updated)
	}
	return tw.Flush()
}
