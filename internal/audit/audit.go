// Package audit records who did what, and whether it worked.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/Flecksis/Local-NET-Storage-Chat/internal/shared/id"
)

// Action names recorded by the service.
const (
	ActionLogin           = "login"
	ActionLogout          = "logout"
	ActionCreateUser      = "create_user"
	ActionUpdateUser      = "update_user"
	ActionDeleteUser      = "delete_user"
	ActionSendMessage     = "send_message"
	ActionListFiles       = "list_files"
	ActionUploadFile      = "upload_file"
	ActionDeleteFile      = "delete_file"
	ActionDownloadFile    = "download_file"
	ActionRenameFile      = "rename_file"
	ActionCreateFolder    = "create_folder"
	ActionDownloadArchive = "download_archive"
)

// Outcome tells whether the audited operation succeeded.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// Event is one audit record.
type Event struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Outcome   Outcome   `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a new event with an ID and the current time.
func NewEvent(username, action, details string, outcome Outcome) Event {
	return Event{
		ID:        id.NewEventID().String(),
		Username:  username,
		Action:    action,
		Details:   details,
		Outcome:   outcome,
		Timestamp: time.Now().UTC(),
	}
}

// Sink receives audit events.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Multi fans an event out to several sinks and joins their errors.
type Multi []Sink

// Record delivers ev to every sink, even after a failure.
func (m Multi) Record(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
