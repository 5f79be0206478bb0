package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Routes
// ============================================================

// Routes вешает API студии на /api/v1.
func Routes(app fiber.Router, auth *AuthHandler, projects *ProjectHandler, editor *EditorHandler) {
	api := app.Group("/api/v1")

	api.Post("/auth/register", auth.Register)
	api.Post("/auth/login", auth.Login)
	api.Post("/auth/logout", auth.Logout)
	api.Get("/users/me", auth.GetUser)
	api.Patch("/users/me", auth.UpdateUser)
	api.Delete("/users/me", auth.DeleteUser)

	api.Get("/projects", projects.List)
	api.Post("/projects", projects.Create)
	api.Post("/projects/import", projects.Import)
	api.Get("/projects/:id", projects.Get)
	api.Delete("/projects/:id", projects.Delete)
	api.Get("/projects/:id/export/:format", projects.Export)
	api.Post("/projects/:id/editor", editor.Open)

	ed := api.Group("/editor/:sid")
	ed.Get("/", editor.State)
	ed.Delete("/", editor.Close)
	ed.Post("/pointer/:phase", editor.Pointer)
	ed.Post("/keys", editor.Key)
	ed.Get("/hit", editor.HitTest)
	ed.Put("/tool", editor.SelectTool)
	ed.Post("/selection", editor.Select)
	ed.Delete("/selection", editor.Deselect)
	ed.Delete("/selection/element", editor.DeleteSelected)
	ed.Patch("/elements/:eid", editor.UpdateElement)
	ed.Post("/elements/:eid/reorder", editor.Reorder)
	ed.Post("/elements/:eid/text/begin", editor.BeginText)
	ed.Put("/elements/:eid/text", editor.EditText)
	ed.Post("/elements/:eid/text/commit", editor.CommitText)
	ed.Get("/layers", editor.Layers)
	ed.Get("/properties", editor.Properties)
	ed.Get("/events", editor.Events)
}
