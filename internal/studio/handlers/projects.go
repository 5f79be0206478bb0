package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"design-studio/internal/editor/export"
	"design-studio/internal/editor/session"
	"design-studio/internal/studio/models"
	"design-studio/internal/studio/service"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Project Handler
// ============================================================

type ProjectHandler struct {
	authenticator
	projects *service.Projects
	editors  *session.Manager
}

func NewProjectHandler(projects *service.Projects, tokens *service.SessionManager, editors *session.Manager) *ProjectHandler {
	return &ProjectHandler{
		authenticator: authenticator{tokens: tokens},
		projects:      projects,
		editors:       editors,
	}
}

type projectPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Updated   string    `json:"updated"`
	Editing   bool      `json:"editing"`
}

type createProjectRequest struct {
	Name string `json:"name"`
}

// List отдаёт проекты для дашборда, последние изменённые первыми.
func (h *ProjectHandler) List(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	projects, err := h.projects.List(context.Background(), userID)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]projectPayload, 0, len(projects))
	for _, p := range projects {
		out = append(out, h.mapProject(p))
	}
	return c.JSON(out)
}

func (h *ProjectHandler) Create(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	var req createProjectRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	project, err := h.projects.Create(context.Background(), userID, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	log.Printf("[STUDIO] project %s created by %s", project.ID, userID)
	return c.Status(http.StatusCreated).JSON(project)
}

// Import создаёт проект из загруженного JSON-экспорта.
func (h *ProjectHandler) Import(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file required")
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".json" {
		return badRequest(c, "only json allowed")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	name := c.FormValue("name")
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	project, err := h.projects.Import(context.Background(), userID, name, data)
	if err != nil {
		return writeError(c, err)
	}
	log.Printf("[STUDIO] project %s imported (%d elements)", project.ID, len(project.Elements))
	return c.Status(http.StatusCreated).JSON(project)
}

func (h *ProjectHandler) Get(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	project, err := h.projects.Owned(context.Background(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if s, open := h.editors.ForProject(project.ID); open {
		project.Elements, _ = s.Elements()
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Delete(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	projectID := c.Params("id")
	if _, err := h.projects.Owned(context.Background(), userID, projectID); err != nil {
		return writeError(c, err)
	}
	err := h.editors.WithProjectsClosed([]string{projectID}, func() error {
		return h.projects.Delete(context.Background(), userID, projectID)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Export отдаёт проект как json, html или svg файл с именем проекта.
func (h *ProjectHandler) Export(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	project, err := h.projects.Owned(context.Background(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	elements := project.Elements
	var sizer export.Sizer
	if s, open := h.editors.ForProject(project.ID); open {
		elements, sizer = s.Elements()
	} else {
		sizer = session.Measured(h.editors.Canvas(), h.editors.Measurer(), elements)
	}

	format := strings.ToLower(c.Params("format"))
	switch format {
	case "json":
		data, err := export.JSON(elements)
		if err != nil {
			return writeError(c, err)
		}
		c.Attachment(project.Name + ".json")
		c.Type("json")
		return c.Send(data)
	case "html":
		c.Attachment(project.Name + ".html")
		c.Type("html")
		return c.SendString(export.HTML(project.Name, h.editors.Canvas(), elements))
	case "svg":
		c.Attachment(project.Name + ".svg")
		c.Set("Content-Type", "image/svg+xml")
		return c.SendString(export.SVG(h.editors.Canvas(), elements, sizer))
	}
	return badRequest(c, "unknown export format")
}

func (h *ProjectHandler) mapProject(p models.Project) projectPayload {
	_, open := h.editors.ForProject(p.ID)
	return projectPayload{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Updated:   humanize.Time(p.UpdatedAt),
		Editing:   open,
	}
}
