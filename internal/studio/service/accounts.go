package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"design-studio/internal/studio/models"
	"design-studio/internal/studio/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrLimitReached       = errors.New("account limit reached")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrInvalidInput       = errors.New("invalid input")
)

const DefaultAvatar = "av-1"

// ============================================================
// Accounts
// ============================================================

type Accounts struct {
	repo     *repository.Repository
	maxUsers int
	cost     int

	// register считает пользователей и вставляет нового под одной блокировкой
	mu sync.Mutex
}

func NewAccounts(repo *repository.Repository, maxUsers int) *Accounts {
	return &Accounts{repo: repo, maxUsers: maxUsers, cost: bcrypt.DefaultCost}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	AvatarID string `json:"avatarId"`
}

// UserUpdate holds the fields a settings form may change; nil means unchanged.
type UserUpdate struct {
	Name        *string             `json:"name"`
	Email       *string             `json:"email"`
	Password    *string             `json:"password"`
	AvatarID    *string             `json:"avatarId"`
	Preferences *models.Preferences `json:"preferences"`
}

func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || !validEmail(in.Email) || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password required", ErrInvalidInput)
	}
	if in.AvatarID == "" {
		in.AvatarID = DefaultAvatar
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.maxUsers > 0 {
		n, err := a.repo.CountUsers(ctx)
		if err != nil {
			return nil, err
		}
		if n >= a.maxUsers {
			return nil, ErrLimitReached
		}
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		AvatarID:     in.AvatarID,
		Preferences:  models.DefaultPreferences,
	}
	if err := a.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("[AUTH] registered user %s", u.ID)
	return u, nil
}

// Authenticate проверяет email и пароль.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := a.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (a *Accounts) Get(ctx context.Context, id string) (*models.User, error) {
	return a.repo.GetUserByID(ctx, id)
}

// Update применяет изменения профиля. Смена email или пароля требует
// текущий пароль.
func (a *Accounts) Update(ctx context.Context, id string, upd UserUpdate, currentPassword string) (*models.User, error) {
	u, err := a.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	emailChange := upd.Email != nil && strings.TrimSpace(*upd.Email) != u.Email
	passwordChange := upd.Password != nil && *upd.Password != ""
	if emailChange || passwordChange {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)) != nil {
			return nil, ErrIncorrectPassword
		}
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
		}
		u.Name = name
	}
	if emailChange {
		email := strings.TrimSpace(*upd.Email)
		if !validEmail(email) {
			return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
		}
		u.Email = email
	}
	if passwordChange {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), a.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if upd.AvatarID != nil && *upd.AvatarID != "" {
		u.AvatarID = *upd.AvatarID
	}
	if upd.Preferences != nil {
		if upd.Preferences.Theme != "" {
			u.Preferences.Theme = upd.Preferences.Theme
		}
		if upd.Preferences.Accent != "" {
			u.Preferences.Accent = upd.Preferences.Accent
		}
	}

	if err := a.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the account and all of its projects.
func (a *Accounts) Delete(ctx context.Context, id string) error {
	if err := a.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	log.Printf("[AUTH] deleted user %s", id)
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
