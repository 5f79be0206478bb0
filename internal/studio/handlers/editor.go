package handlers

import (
	"context"
	"net/http"
	"strconv"

	"design-studio/internal/editor/models"
	"design-studio/internal/editor/session"
	"design-studio/internal/editor/tools"
	"design-studio/internal/studio/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Handler
// ============================================================

type EditorHandler struct {
	authenticator
	projects *service.Projects
	editors  *session.Manager
}

func NewEditorHandler(projects *service.Projects, tokens *service.SessionManager, editors *session.Manager) *EditorHandler {
	return &EditorHandler{
		authenticator: authenticator{tokens: tokens},
		projects:      projects,
		editors:       editors,
	}
}

type inputResponse struct {
	Response tools.Response `json:"response"`
	State    session.State  `json:"state"`
}

type toolRequest struct {
	Tool string `json:"tool"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type reorderRequest struct {
	Direction string `json:"direction"`
}

type textRequest struct {
	Content string `json:"content"`
}

// lookup находит сессию по :sid и проверяет владельца.
func (h *EditorHandler) lookup(c fiber.Ctx) (*session.Session, error) {
	userID, ok := h.authorize(c)
	if !ok {
		return nil, fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	s, err := h.editors.Get(c.Params("sid"))
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, service.ErrForbidden
	}
	return s, nil
}

func (h *EditorHandler) fail(c fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return writeError(c, err)
}

// Open загружает проект в новую сессию редактора.
func (h *EditorHandler) Open(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	project, err := h.projects.Owned(context.Background(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	s, err := h.editors.Open(context.Background(), userID, project.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(s.State())
}

func (h *EditorHandler) Close(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.editors.Close(s.ID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) State(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(s.State())
}

// ============================================================
// Input
// ============================================================

// Pointer принимает down, move и up в :phase.
func (h *EditorHandler) Pointer(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	var ev tools.PointerEvent
	if err := decode(c, &ev); err != nil {
		return badRequest(c, err.Error())
	}

	var resp tools.Response
	switch c.Params("phase") {
	case "down":
		resp = s.PointerDown(ev)
	case "move":
		resp = s.PointerMove(ev)
	case "up":
		resp = s.PointerUp(ev)
	default:
		return badRequest(c, "phase must be down, move or up")
	}
	return c.JSON(inputResponse{Response: resp, State: s.State()})
}

func (h *EditorHandler) Key(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	var ev tools.KeyEvent
	if err := decode(c, &ev); err != nil {
		return badRequest(c, err.Error())
	}
	resp := s.KeyDown(ev)
	return c.JSON(inputResponse{Response: resp, State: s.State()})
}

func (h *EditorHandler) HitTest(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		return badRequest(c, "x and y required")
	}
	return c.JSON(s.HitTest(x, y))
}

// ============================================================
// Toolbar & panels
// ============================================================

func (h *EditorHandler) SelectTool(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req toolRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	tool, ok := models.ParseTool(req.Tool)
	if !ok {
		return badRequest(c, "unknown tool")
	}
	s.SelectTool(tool)
	return c.JSON(s.State())
}

func (h *EditorHandler) Select(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req selectRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	s.Select(req.ID)
	return c.JSON(s.State())
}

func (h *EditorHandler) Deselect(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	s.Deselect()
	return c.JSON(s.State())
}

// Reorder двигает слой вперёд или назад; на границе порядок не меняется.
func (h *EditorHandler) Reorder(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req reorderRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	dir, ok := models.ParseDirection(req.Direction)
	if !ok {
		return badRequest(c, "direction must be forward or backward")
	}

	moved := s.Reorder(c.Params("eid"), dir)
	return c.JSON(fiber.Map{"moved": moved, "state": s.State()})
}

// UpdateElement is the properties panel edit.
func (h *EditorHandler) UpdateElement(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	var patch models.ElementPatch
	if err := decode(c, &patch); err != nil {
		return badRequest(c, err.Error())
	}

	ok, err := s.UpdateElement(c.Params("eid"), patch)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "element not found"})
	}
	return c.JSON(s.State())
}

func (h *EditorHandler) DeleteSelected(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	deleted := s.DeleteSelected()
	return c.JSON(fiber.Map{"deleted": deleted, "state": s.State()})
}

func (h *EditorHandler) Layers(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(s.Layers())
}

func (h *EditorHandler) Properties(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	props, ok := s.Properties()
	if !ok {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.JSON(props)
}

// Events отдаёт уведомления с номером больше ?since.
func (h *EditorHandler) Events(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	since, _ := strconv.ParseInt(c.Query("since", "0"), 10, 64)
	return c.JSON(s.Events(since))
}

// ============================================================
// In-place text editing
// ============================================================

func (h *EditorHandler) BeginText(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	if !s.BeginTextEdit(c.Params("eid")) {
		return badRequest(c, "element is not editable text")
	}
	return c.JSON(s.State())
}

func (h *EditorHandler) EditText(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}

	var req textRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if !s.EditText(c.Params("eid"), req.Content) {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "element is not being edited"})
	}
	return c.JSON(s.State())
}

func (h *EditorHandler) CommitText(c fiber.Ctx) error {
	s, err := h.lookup(c)
	if err != nil {
		return h.fail(c, err)
	}
	if !s.CommitTextEdit(c.Params("eid")) {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "element is not being edited"})
	}
	return c.JSON(s.State())
}
