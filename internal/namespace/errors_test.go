package namespace

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindPathViolation: "path_violation",
		KindNotFound:      "not_found",
		KindNotADirectory: "not_a_directory",
		KindAlreadyExists: "already_exists",
		KindIOFailure:     "io_failure",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.String())
	}
}

func TestClassify(t *testing.T) {
	loc := Location{Category: Common, Rel: "docs"}

	tests := []struct {
		err  error
		want Kind
	}{
		{&fs.PathError{Op: "open", Path: "x", Err: syscall.ENOENT}, KindNotFound},
		{&fs.PathError{Op: "mkdir", Path: "x", Err: syscall.EEXIST}, KindAlreadyExists},
		{&fs.PathError{Op: "mkdir", Path: "x", Err: syscall.ENOTDIR}, KindNotADirectory},
		{&fs.PathError{Op: "open", Path: "x", Err: syscall.EACCES}, KindIOFailure},
		{errors.New("boom"), KindIOFailure},
		{newError(KindAlreadyExists, "rename", loc, "b"), KindAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			err := classify("op", loc, "a", tt.err)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestErrorMessageAndWrapping(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/srv/x", Err: syscall.ENOENT}
	err := classify("download", Location{Category: Personal, Rel: "docs"}, "a.txt", cause)

	assert.Equal(t, `download: not found "docs/a.txt" in personal: open /srv/x: no such file or directory`, err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrAlreadyExists)

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindIOFailure, KindOf(errors.New("other")))
}
