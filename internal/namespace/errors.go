package namespace

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// Kind classifies namespace failures.
type Kind int

const (
	// KindIOFailure is any unexpected filesystem fault.
	KindIOFailure Kind = iota
	// KindPathViolation means the reference escapes or malforms its root.
	KindPathViolation
	// KindNotFound means the referenced entry or directory is absent.
	KindNotFound
	// KindNotADirectory means a directory was expected.
	KindNotADirectory
	// KindAlreadyExists means the target name is taken.
	KindAlreadyExists
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPathViolation:
		return "path_violation"
	case KindNotFound:
		return "not_found"
	case KindNotADirectory:
		return "not_a_directory"
	case KindAlreadyExists:
		return "already_exists"
	default:
		return "io_failure"
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrPathViolation = &Error{Kind: KindPathViolation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrNotADirectory = &Error{Kind: KindNotADirectory}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrIOFailure     = &Error{Kind: KindIOFailure}
)

// Error is the error type returned by every namespace operation.
type Error struct {
	Kind     Kind
	Op       string
	Category Category
	Path     string
	Name     string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(strings.ReplaceAll(e.Kind.String(), "_", " "))

	target := e.target()
	if target != "" {
		fmt.Fprintf(&b, " %q", target)
	}
	if e.Category != "" {
		fmt.Fprintf(&b, " in %s", e.Category)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) target() string {
	switch {
	case e.Path != "" && e.Name != "":
		return e.Path + "/" + e.Name
	case e.Name != "":
		return e.Name
	default:
		return e.Path
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so sentinels compare by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the Kind carried by err. Errors that did not originate in
// this package are reported as KindIOFailure.
func KindOf(err error) Kind {
	var nerr *Error
	if errors.As(err, &nerr) {
		return nerr.Kind
	}
	return KindIOFailure
}

func violation(op string, cat Category, path, format string, args ...any) *Error {
	return &Error{
		Kind:     KindPathViolation,
		Op:       op,
		Category: cat,
		Path:     path,
		Err:      fmt.Errorf(format, args...),
	}
}

// classify converts an os-level error into a namespace error.
func classify(op string, loc Location, name string, err error) *Error {
	var nerr *Error
	if errors.As(err, &nerr) {
		return nerr
	}

	kind := KindIOFailure
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrExist):
		kind = KindAlreadyExists
	case errors.Is(err, syscall.ENOTDIR):
		kind = KindNotADirectory
	}

	return &Error{
		Kind:     kind,
		Op:       op,
		Category: loc.Category,
		Path:     loc.Rel,
		Name:     name,
		Err:      err,
	}
}

func newError(kind Kind, op string, loc Location, name string) *Error {
	return &Error{Kind: kind, Op: op, Category: loc.Category, Path: loc.Rel, Name: name}
}
