package domain

import (
	"context"
	"errors"
)

var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRecord maps a backend account to the Telegram chat it logged in
// from, plus the bearer token issued at login. Keyed by MasterID; written only
// by the login flow, read-shared by the notification relay.
type IdentityRecord struct {
	MasterID int64
	ChatID   int64
	Token    string
}

type IdentityStore interface {
	// Resolve returns the chat session for a master's internal id, or
	// ErrIdentityNotFound. Safe for concurrent readers alongside one writer.
	Resolve(ctx context.Context, masterID int64) (int64, error)

	// ByChatSession returns the record for a chat session, used by the
	// conversational handlers to pick up the stored token.
	ByChatSession(ctx context.Context, chatID int64) (*IdentityRecord, error)

	// Upsert creates or overwrites the record for rec.MasterID.
	Upsert(ctx context.Context, rec *IdentityRecord) error
}
