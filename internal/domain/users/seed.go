package users

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Seed is an account created on first start.
type Seed struct {
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	Name     string `yaml:"name" toml:"name"`
	Admin    bool   `yaml:"admin" toml:"admin"`
}

type seedFile struct {
	Users []Seed `yaml:"users" toml:"users"`
}

// DefaultSeeds returns the built-in accounts used when no seed file is set.
func DefaultSeeds() []Seed {
	return []Seed{
		{Username: "admin", Password: "admin123", Name: "Администратор", Admin: true},
		{Username: "user1", Password: "password1", Name: "Пользователь 1"},
	}
}

// LoadSeedFile reads seeds from a .yaml, .yml or .toml file with a top-level
// "users" list.
func LoadSeedFile(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported seed file format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(f.Users) == 0 {
		return nil, fmt.Errorf("seed file %s defines no users", path)
	}
	return f.Users, nil
}

// EnsureSeeded creates seeds when the account collection is empty and
// returns how many accounts were created.
func (m *Manager) EnsureSeeded(ctx context.Context, seeds []Seed) (int, error) {
	n, err := m.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("users: count: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, s := range seeds {
		if _, err := m.Create(ctx, CreateRequest{
			Username: s.Username,
			Password: s.Password,
			Name:     s.Name,
			Admin:    s.Admin,
		}); err != nil {
			return created, fmt.Errorf("seed %s: %w", s.Username, err)
		}
		created++
	}

	m.logger.Info("seeded accounts", zap.Int("count", created))
	return created, nil
}
