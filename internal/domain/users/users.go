package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/shared/id"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/shared/utils"
	"github.com/Flecksis/Local-NET-Storage-Chat/internal/store"
)

// Collection is the store collection holding accounts.
const Collection = "users"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUser        = errors.New("invalid user")
)

// User is a stored account.
type User struct {
	ID           id.UserID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	Name         string    `json:"name"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateRequest carries the fields of a new account.
type CreateRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Name     string `validate:"required"`
	Admin    bool
}

// UpdateRequest replaces the profile of an account. An empty Password keeps
// the current one.
type UpdateRequest struct {
	Name     string `validate:"required"`
	Password string
	Admin    bool
}

// RootRemover deletes a user's personal storage.
type RootRemover interface {
	RemovePersonalRoot(ctx context.Context, username string) error
}

// Manager owns the account collection.
type Manager struct {
	coll     store.Collection
	roots    RootRemover
	logger   *zap.Logger
	validate *validator.Validate
	cost     int

	// serializes read-modify-write sequences on accounts
	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithBcryptCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) { m.cost = cost }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger.Named("users") }
}

// NewManager opens the account collection of s. roots may be nil, in which
// case deleting an account leaves its storage in place.
func NewManager(s store.Store, roots RootRemover, opts ...Option) (*Manager, error) {
	coll, err := s.Collection(Collection)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	m := &Manager{
		coll:     coll,
		roots:    roots,
		logger:   zap.NewNop(),
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Authenticate verifies username and password.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := m.Get(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the account of username.
func (m *Manager) Get(ctx context.Context, username string) (User, error) {
	u, err := store.Load[User](ctx, m.coll, username)
	if errors.Is(err, store.ErrNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: load %s: %w", username, err)
	}
	return u, nil
}

// List returns all accounts ordered by username.
func (m *Manager) List(ctx context.Context) ([]User, error) {
	all, err := store.All[User](ctx, m.coll)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return all, nil
}

// Create adds a new account.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (User, error) {
	if err := m.validateCreate(req); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), m.cost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.coll.Get(ctx, req.Username); err == nil {
		return User{}, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return User{}, fmt.Errorf("users: lookup %s: %w", req.Username, err)
	}

	u := User{
		ID:           id.NewUserID(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Admin:        req.Admin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.Save(ctx, m.coll, u.Username, u); err != nil {
		return User{}, fmt.Errorf("users: save %s: %w", u.Username, err)
	}

	m.logger.Info("user created",
		zap.String("id", u.ID.String()),
		zap.String("username", u.Username),
		zap.Bool("admin", u.Admin))
	return u, nil
}

// Update replaces name and admin flag, and the password when one is given.
func (m *Manager) Update(ctx context.Context, username string, req UpdateRequest) (User, error) {
	if err := m.validateUpdate(req); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	var hash []byte
	if req.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), m.cost); err != nil {
			return User{}, fmt.Errorf("users: hash password: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.Get(ctx, username)
	if err != nil {
		return User{}, err
	}
	u.Name = req.Name
	u.Admin = req.Admin
	if hash != nil {
		u.PasswordHash = string(hash)
	}
	if err := store.Save(ctx, m.coll, u.Username, u); err != nil {
		return User{}, fmt.Errorf("users: save %s: %w", u.Username, err)
	}

	m.logger.Info("user updated", zap.String("username", username), zap.Bool("password_changed", hash != nil))
	return u, nil
}

// Delete removes the account and its personal storage root.
func (m *Manager) Delete(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.coll.Delete(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("users: delete %s: %w", username, err)
	}

	if m.roots != nil {
		if err := m.roots.RemovePersonalRoot(ctx, username); err != nil {
			return fmt.Errorf("users: remove storage of %s: %w", username, err)
		}
	}

	m.logger.Info("user deleted", zap.String("username", username))
	return nil
}

// Count returns the number of accounts.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return store.Count(ctx, m.coll)
}

func (m *Manager) validateCreate(req CreateRequest) error {
	if err := m.validate.Struct(req); err != nil {
		return err
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		return err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return err
	}
	return utils.ValidateName(req.Name, "name")
}

func (m *Manager) validateUpdate(req UpdateRequest) error {
	if err := m.validate.Struct(req); err != nil {
		return err
	}
	if req.Password != "" {
		if err := utils.ValidatePassword(req.Password); err != nil {
			return err
		}
	}
	return utils.ValidateName(req.Name, "name")
}
