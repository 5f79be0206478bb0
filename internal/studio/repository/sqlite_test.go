package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	editor "design-studio/internal/editor/models"
	"design-studio/internal/studio/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "studio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background()))
	// Init is idempotent.
	require.NoError(t, repo.Init(context.Background()))

	clock := time.UnixMilli(1_700_000_000_000)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func newUser(t *testing.T, repo *Repository, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "Ann",
		Email:        email,
		PasswordHash: "hash",
		AvatarID:     "av-2",
		Preferences:  models.DefaultPreferences,
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func newProject(t *testing.T, repo *Repository, userID, name string) *models.Project {
	t.Helper()
	p := &models.Project{ID: uuid.NewString(), UserID: userID, Name: name}
	require.NoError(t, repo.CreateProject(context.Background(), p))
	return p
}

func TestRepository_Users(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := newUser(t, repo, "ann@example.com")

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "av-2", got.AvatarID)
	assert.Equal(t, models.DefaultPreferences, got.Preferences)
	assert.Equal(t, u.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	dup := &models.User{ID: uuid.NewString(), Name: "Other", Email: "ann@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrEmailTaken)

	got.Name = "Anna"
	got.Preferences.Theme = "dark"
	require.NoError(t, repo.UpdateUser(ctx, got))

	reloaded, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", reloaded.Name)
	assert.Equal(t, "dark", reloaded.Preferences.Theme)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_UpdateUserEmailConflict(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	newUser(t, repo, "a@example.com")
	b := newUser(t, repo, "b@example.com")

	b.Email = "a@example.com"
	assert.ErrorIs(t, repo.UpdateUser(ctx, b), ErrEmailTaken)

	b.ID = "missing"
	b.Email = "c@example.com"
	assert.ErrorIs(t, repo.UpdateUser(ctx, b), ErrNotFound)
}

func TestRepository_DeleteUserCascadesProjects(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := newUser(t, repo, "ann@example.com")
	other := newUser(t, repo, "bob@example.com")
	p := newProject(t, repo, u.ID, "Poster")
	kept := newProject(t, repo, other.ID, "Poster")

	require.NoError(t, repo.DeleteUser(ctx, u.ID))

	_, err := repo.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetProject(ctx, kept.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestRepository_ProjectNamesAreCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := newUser(t, repo, "ann@example.com")
	other := newUser(t, repo, "bob@example.com")
	newProject(t, repo, u.ID, "Straße Poster")

	tests := []struct {
		name   string
		userID string
		input  string
		free   bool
	}{
		{"same name", u.ID, "Straße Poster", false},
		{"different case", u.ID, "STRASSE POSTER", false},
		{"surrounding spaces", u.ID, "  straße poster ", false},
		{"other user", other.ID, "Straße Poster", true},
		{"new name", u.ID, "Flyer", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			free, err := repo.NameAvailable(ctx, tt.userID, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.free, free)
		})
	}

	dup := &models.Project{ID: uuid.NewString(), UserID: u.ID, Name: "strasse poster"}
	assert.ErrorIs(t, repo.CreateProject(ctx, dup), ErrNameTaken)
}

func TestRepository_ListProjectsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := newUser(t, repo, "ann@example.com")
	first := newProject(t, repo, u.ID, "First")
	second := newProject(t, repo, u.ID, "Second")

	list, err := repo.ListProjects(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	// Сохранение поднимает проект наверх.
	require.NoError(t, repo.SaveElements(ctx, first.ID, nil))

	list, err = repo.ListProjects(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID)
	assert.True(t, list[0].UpdatedAt.After(list[0].CreatedAt))

	empty, err := repo.ListProjects(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_ElementsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := newUser(t, repo, "ann@example.com")
	p := newProject(t, repo, u.ID, "Poster")

	loaded, err := repo.LoadElements(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	rect := editor.NewElement("el_1", editor.KindRectangle, 10, 20, 1)
	text := editor.NewElement("el_2", editor.KindText, 30, 40, 2)
	text.Content = "Hi"
	require.NoError(t, repo.SaveElements(ctx, p.ID, []editor.Element{rect, text}))

	loaded, err = repo.LoadElements(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []editor.Element{rect, text}, loaded)
	assert.True(t, loaded[1].Height.Auto)

	assert.ErrorIs(t, repo.SaveElements(ctx, "missing", nil), ErrNotFound)
	_, err = repo.LoadElements(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_DeleteProject(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := newUser(t, repo, "ann@example.com")
	p := newProject(t, repo, u.ID, "Poster")

	require.NoError(t, repo.DeleteProject(ctx, p.ID))
	assert.ErrorIs(t, repo.DeleteProject(ctx, p.ID), ErrNotFound)

	free, err := repo.NameAvailable(ctx, u.ID, "Poster")
	require.NoError(t, err)
	assert.True(t, free)
}
