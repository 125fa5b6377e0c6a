// Package audit describes the metadata trail of dataset uploads. Entries
// never carry table rows or personal data.
package audit

import (
	"context"
	"time"
)

// Outcome of an upload attempt.
type Outcome string

const (
	OutcomeLoaded   Outcome = "loaded"
	OutcomeRejected Outcome = "rejected"
	OutcomeCleared  Outcome = "cleared"
)

// Entry is one upload attempt.
type Entry struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Slot      string     `json:"slot"`
	Filename  string     `json:"filename"`
	Decoder   string     `json:"decoder,omitempty"`
	Rows      int        `json:"rows"`
	Snapshot  *time.Time `json:"snapshot,omitempty"`
	Errors    int        `json:"errors"`
	Warnings  int        `json:"warnings"`
	Outcome   Outcome    `json:"outcome"`
	Cause     string     `json:"cause,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Recorder stores and lists entries.
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
	Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error)
}

// Nop discards every entry. It is used when no audit database is configured.
type Nop struct{}

func (Nop) Record(context.Context, *Entry) error { return nil }

func (Nop) Recent(context.Context, string, int) ([]Entry, error) { return nil, nil }
