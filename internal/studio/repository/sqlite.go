package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	editor "design-studio/internal/editor/models"
	"design-studio/internal/studio/models"

	"github.com/ncruces/go-sqlite3"
	"golang.org/x/text/cases"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrNameTaken  = errors.New("project name already used")
)

//go:embed migrations/001_init.sql
var initSQL string

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Init применяет встроенную миграцию.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, initSQL); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// NameKey is the case-insensitive form used for project name uniqueness.
// Caser is stateful, so each call gets its own.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// ============================================================
// Users
// ============================================================

const userColumns = `id, name, email, password_hash, avatar_id, theme, accent, created_at`

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = r.now()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, u.ID, u.Name, u.Email, u.PasswordHash, u.AvatarID, u.Preferences.Theme, u.Preferences.Accent, u.CreatedAt.UnixMilli())
	if err != nil {
		if isUnique(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *Repository) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET name = ?, email = ?, password_hash = ?, avatar_id = ?, theme = ?, accent = ?
        WHERE id = ?
    `, u.Name, u.Email, u.PasswordHash, u.AvatarID, u.Preferences.Theme, u.Preferences.Accent, u.ID)
	if err != nil {
		if isUnique(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectRow(res)
}

// DeleteUser удаляет пользователя вместе с его проектами.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete projects: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := expectRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u       models.User
		created int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarID, &u.Preferences.Theme, &u.Preferences.Accent, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = time.UnixMilli(created)
	return &u, nil
}

// ============================================================
// Projects
// ============================================================

func (r *Repository) CreateProject(ctx context.Context, p *models.Project) error {
	data, err := encodeElements(p.Elements)
	if err != nil {
		return err
	}

	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO projects (id, user_id, name, name_key, data, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, p.ID, p.UserID, p.Name, NameKey(p.Name), data, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if isUnique(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// NameAvailable reports whether userID has no project with this name, ignoring case.
func (r *Repository) NameAvailable(ctx context.Context, userID, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM projects WHERE user_id = ? AND name_key = ?
    `, userID, NameKey(name)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check name: %w", err)
	}
	return n == 0, nil
}

// ListProjects возвращает проекты пользователя, последние изменённые первыми.
func (r *Repository) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, name, created_at, updated_at
        FROM projects
        WHERE user_id = ?
        ORDER BY updated_at DESC, rowid DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		var (
			p                models.Project
			created, updated int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &created, &updated); err != nil {
			return nil, err
		}
		p.CreatedAt = time.UnixMilli(created)
		p.UpdatedAt = time.UnixMilli(updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProject returns the project with its element list.
func (r *Repository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, user_id, name, data, created_at, updated_at
        FROM projects
        WHERE id = ?
    `, id)

	var (
		p                models.Project
		data             string
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &data, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	elements, err := decodeElements(data)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", id, err)
	}
	p.Elements = elements
	p.CreatedAt = time.UnixMilli(created)
	p.UpdatedAt = time.UnixMilli(updated)
	return &p, nil
}

func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return expectRow(res)
}

// LoadElements реализует session.Store.
func (r *Repository) LoadElements(ctx context.Context, projectID string) ([]editor.Element, error) {
	p, err := r.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return p.Elements, nil
}

// SaveElements replaces the element list and bumps updated_at.
func (r *Repository) SaveElements(ctx context.Context, projectID string, elements []editor.Element) error {
	data, err := encodeElements(elements)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
        UPDATE projects SET data = ?, updated_at = ? WHERE id = ?
    `, data, r.now().UnixMilli(), projectID)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return expectRow(res)
}

func encodeElements(elements []editor.Element) (string, error) {
	if elements == nil {
		elements = []editor.Element{}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("encode elements: %w", err)
	}
	return string(data), nil
}

func decodeElements(data string) ([]editor.Element, error) {
	var elements []editor.Element
	if err := json.Unmarshal([]byte(data), &elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	return elements, nil
}

// ============================================================
// Helpers
// ============================================================

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUnique(err error) bool {
	return errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) || errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY)
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000&_pragma=foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
