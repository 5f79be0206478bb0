package handlers

import (
	"context"
	"log"
	"net/http"

	"design-studio/internal/editor/session"
	"design-studio/internal/studio/models"
	"design-studio/internal/studio/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Auth Handler
// ============================================================

type AuthHandler struct {
	authenticator
	accounts *service.Accounts
	projects *service.Projects
	editors  *session.Manager
}

func NewAuthHandler(accounts *service.Accounts, projects *service.Projects, tokens *service.SessionManager, editors *session.Manager) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator{tokens: tokens},
		accounts:      accounts,
		projects:      projects,
		editors:       editors,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type updateUserRequest struct {
	service.UserUpdate
	CurrentPassword string `json:"currentPassword"`
}

// Register создаёт аккаунт и сразу выдаёт токен.
func (h *AuthHandler) Register(c fiber.Ctx) error {
	log.Printf("[AUTH] Register request")

	var req service.RegisterInput
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.accounts.Register(context.Background(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(loginResponse{
		Token: h.tokens.Issue(user.ID),
		User:  user,
	})
}

// Login выдает токен по паре email/password.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	log.Printf("[AUTH] Login request")

	var req loginRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password required")
	}

	user, err := h.accounts.Authenticate(context.Background(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(loginResponse{
		Token: h.tokens.Issue(user.ID),
		User:  user,
	})
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token, ok := bearer(c)
	if !ok {
		return unauthorized(c)
	}
	h.tokens.Revoke(token)
	return c.SendStatus(http.StatusNoContent)
}

// GetUser возвращает текущего пользователя.
func (h *AuthHandler) GetUser(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.accounts.Get(context.Background(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) UpdateUser(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	var req updateUserRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.accounts.Update(context.Background(), userID, req.UserUpdate, req.CurrentPassword)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser удаляет аккаунт, его проекты и открытые редакторы.
func (h *AuthHandler) DeleteUser(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return unauthorized(c)
	}

	projects, err := h.projects.List(context.Background(), userID)
	if err != nil {
		return writeError(c, err)
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	err = h.editors.WithProjectsClosed(ids, func() error {
		return h.accounts.Delete(context.Background(), userID)
	})
	if err != nil {
		return writeError(c, err)
	}
	h.tokens.RevokeUser(userID)
	return c.SendStatus(http.StatusNoContent)
}
