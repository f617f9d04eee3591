package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/strawberrylab/masterbot/internal/domain"
)

type identityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) domain.IdentityStore {
	return &identityRepository{
		db: db,
	}
}

func (r *identityRepository) Resolve(ctx context.Context, masterID int64) (int64, error) {
	var chatID sql.NullInt64

	err := r.db.QueryRowContext(ctx,
		`SELECT telegram_id FROM user_tokens WHERE user_id = ?`, masterID,
	).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrIdentityNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve master %d: %w", masterID, err)
	}

	// Rows written by the pre-relay schema have no telegram_id yet; for the
	// relay they are as good as missing.
	if !chatID.Valid {
		return 0, domain.ErrIdentityNotFound
	}

	return chatID.Int64, nil
}

func (r *identityRepository) ByChatSession(ctx context.Context, chatID int64) (*domain.IdentityRecord, error) {
	rec := &domain.IdentityRecord{ChatID: chatID}
	var token sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, token FROM user_tokens WHERE telegram_id = ?`, chatID,
	).Scan(&rec.MasterID, &token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat %d: %w", chatID, err)
	}

	rec.Token = token.String
	return rec, nil
}

func (r *identityRepository) Upsert(ctx context.Context, rec *domain.IdentityRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_tokens (user_id, token, telegram_id)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			token = excluded.token,
			telegram_id = excluded.telegram_id
	`, rec.MasterID, rec.Token, rec.ChatID)
	if err != nil {
		return fmt.Errorf("failed to upsert identity for master %d: %w", rec.MasterID, err)
	}

	return nil
}
