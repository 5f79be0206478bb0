package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"design-studio/internal/editor/session"
	"design-studio/internal/studio/repository"
	"design-studio/internal/studio/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Shared helpers
// ============================================================

type authenticator struct {
	tokens *service.SessionManager
}

func bearer(c fiber.Ctx) (string, bool) {
	auth := c.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}

func (a authenticator) authorize(c fiber.Ctx) (string, bool) {
	token, ok := bearer(c)
	if !ok {
		return "", false
	}
	return a.tokens.Resolve(token)
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// decode разбирает JSON-тело запроса в dst.
func decode(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return errors.New("invalid json")
	}
	return nil
}

// writeError maps domain errors to HTTP statuses.
func writeError(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, session.ErrNoSession):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrEmailTaken), errors.Is(err, repository.ErrNameTaken):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrLimitReached):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrIncorrectPassword):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		log.Printf("[STUDIO] %s %s error: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
