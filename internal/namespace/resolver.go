package namespace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	commonDir      = "common"
	usersDir       = "users"
	personalPrefix = "user_"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Location is a resolved, contained directory inside one category root.
type Location struct {
	Category Category
	// Root is the absolute category root.
	Root string
	// Rel is the normalized relative path, "/"-separated, empty for the root.
	Rel string
	// Dir is the absolute physical directory.
	Dir string
}

// Path returns the physical path of a direct child of the location.
func (l Location) Path(name string) string {
	return filepath.Join(l.Dir, name)
}

// Resolver turns logical references into physical locations.
type Resolver struct {
	root   string
	common string
	users  string
}

// NewResolver creates a resolver rooted at root and ensures the shared area
// exists.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	r := &Resolver{
		root:   abs,
		common: filepath.Join(abs, commonDir),
		users:  filepath.Join(abs, usersDir),
	}
	for _, dir := range []string{r.common, r.users} {
		if err := ensureDir(dir); err != nil {
			return nil, fmt.Errorf("prepare storage root: %w", err)
		}
	}
	return r, nil
}

// Root returns the absolute storage root.
func (r *Resolver) Root() string { return r.root }

// PersonalRoot returns the personal root of username without creating it.
func (r *Resolver) PersonalRoot(username string) (string, error) {
	if err := checkUsername(username); err != nil {
		return "", err
	}
	return filepath.Join(r.users, personalPrefix+username), nil
}

// Resolve validates rel and maps it under the category root. Resolving a
// Personal reference creates the user's root if it does not exist yet.
func (r *Resolver) Resolve(cat Category, username, rel string) (Location, error) {
	segments, err := splitRelative(rel)
	if err != nil {
		return Location{}, violation("resolve", cat, rel, "%v", err)
	}

	var root string
	switch cat {
	case Common:
		root = r.common
	case Personal:
		root, err = r.PersonalRoot(username)
		if err != nil {
			return Location{}, violation("resolve", cat, rel, "%v", err)
		}
	default:
		return Location{}, violation("resolve", cat, rel, "unknown category %q", string(cat))
	}

	dir := filepath.Join(append([]string{root}, segments...)...)
	if err := contained(root, dir); err != nil {
		return Location{}, violation("resolve", cat, rel, "%v", err)
	}
	if cat == Personal {
		if err := ensureDir(root); err != nil {
			return Location{}, classify("resolve", Location{Category: cat}, "", err)
		}
	}

	return Location{
		Category: cat,
		Root:     root,
		Rel:      strings.Join(segments, "/"),
		Dir:      dir,
	}, nil
}

// splitRelative rejects empty, current and parent segments.
func splitRelative(rel string) ([]string, error) {
	if rel == "" {
		return nil, nil
	}
	if strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return nil, errors.New("absolute paths are not allowed")
	}

	segments := strings.Split(rel, "/")
	for _, seg := range segments {
		if err := checkSegment(seg); err != nil {
			return nil, err
		}
	}
	return segments, nil
}

func checkSegment(seg string) error {
	switch {
	case seg == "":
		return errors.New("empty path segment")
	case seg == "." || seg == "..":
		return fmt.Errorf("relative segment %q", seg)
	case strings.ContainsAny(seg, "/\\\x00"):
		return fmt.Errorf("invalid character in %q", seg)
	}
	return nil
}

// checkName validates a single entry name.
func checkName(op string, loc Location, name string) error {
	if err := checkSegment(name); err != nil {
		return &Error{
			Kind:     KindPathViolation,
			Op:       op,
			Category: loc.Category,
			Path:     loc.Rel,
			Name:     name,
			Err:      err,
		}
	}
	return nil
}

// checkUsername only guards the directory name; identities are validated by
// the account layer.
func checkUsername(username string) error {
	if err := checkSegment(username); err != nil {
		return fmt.Errorf("username: %w", err)
	}
	return nil
}

// contained verifies that dir stays below root, both lexically and after
// resolving symlinks on the deepest existing ancestor.
func contained(root, dir string) error {
	if !within(root, dir) {
		return errors.New("path escapes category root")
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	existing := dir
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		if existing == root {
			return nil
		}
		existing = filepath.Dir(existing)
	}

	real, err := filepath.EvalSymlinks(existing)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.New("path crosses a dangling symlink")
		}
		return err
	}
	if !within(realRoot, real) {
		return errors.New("path escapes category root through a symlink")
	}
	return nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ensureDir creates dir and its parents. It fails if dir exists as a
// non-directory.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, dirPerm)
}
