package models

import (
	"time"

	editor "design-studio/internal/editor/models"
)

// ============================================================
// User Model
// ============================================================

type Preferences struct {
	Theme  string `json:"theme"`
	Accent string `json:"accent"`
}

var DefaultPreferences = Preferences{Theme: "light", Accent: "#FCA5A5"}

type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	AvatarID     string      `json:"avatarId"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// ============================================================
// Project Model
// ============================================================

type Project struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Elements  []editor.Element `json:"data,omitempty"`
}
