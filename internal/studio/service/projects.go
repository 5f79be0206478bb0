package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"design-studio/internal/editor/export"
	editor "design-studio/internal/editor/models"
	"design-studio/internal/studio/models"
	"design-studio/internal/studio/repository"

	"github.com/google/uuid"
)

var ErrForbidden = errors.New("forbidden")

// ============================================================
// Projects
// ============================================================

type Projects struct {
	repo *repository.Repository
}

func NewProjects(repo *repository.Repository) *Projects {
	return &Projects{repo: repo}
}

func (p *Projects) List(ctx context.Context, userID string) ([]models.Project, error) {
	return p.repo.ListProjects(ctx, userID)
}

// Create создаёт пустой проект; имя уникально в пределах пользователя без учёта регистра.
func (p *Projects) Create(ctx context.Context, userID, name string) (*models.Project, error) {
	return p.create(ctx, userID, name, nil)
}

// Import creates a project from a JSON export.
func (p *Projects) Import(ctx context.Context, userID, name string, data []byte) (*models.Project, error) {
	elements, err := export.ImportJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p.create(ctx, userID, name, elements)
}

func (p *Projects) create(ctx context.Context, userID, name string, elements []editor.Element) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name required", ErrInvalidInput)
	}

	free, err := p.repo.NameAvailable(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, repository.ErrNameTaken
	}

	project := &models.Project{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Elements: elements,
	}
	if err := p.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	if project.Elements == nil {
		project.Elements = []editor.Element{}
	}
	return project, nil
}

// Owned returns the project if it belongs to userID.
func (p *Projects) Owned(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := p.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	return project, nil
}

func (p *Projects) Delete(ctx context.Context, userID, projectID string) error {
	if _, err := p.Owned(ctx, userID, projectID); err != nil {
		return err
	}
	return p.repo.DeleteProject(ctx, projectID)
}
