package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/MrJamesThe3rd/lumen/internal/credential"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context, identity string) (*credential.Handle, error) {
	query := `
		SELECT identity, access_token, refresh_token, token_type, expiry, updated_at
		FROM oauth_credentials
		WHERE identity = $1
	`

	var (
		h      credential.Handle
		tok    oauth2.Token
		expiry sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, identity).Scan(
		&h.Identity, &tok.AccessToken, &tok.RefreshToken, &tok.TokenType, &expiry, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credential.ErrNotFound
		}

		return nil, fmt.Errorf("loading credential: %w", err)
	}

	if expiry.Valid {
		tok.Expiry = expiry.Time
	}

	h.Token = &tok

	return &h, nil
}

func (s *Store) Save(ctx context.Context, h *credential.Handle) error {
	query := `
		INSERT INTO oauth_credentials (identity, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (identity) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), oauth_credentials.refresh_token),
		    token_type = EXCLUDED.token_type,
		    expiry = EXCLUDED.expiry,
		    updated_at = NOW()
		RETURNING updated_at
	`

	var expiry sql.NullTime
	if !h.Token.Expiry.IsZero() {
		expiry = sql.NullTime{Time: h.Token.Expiry, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		h.Identity,
		h.Token.AccessToken,
		h.Token.RefreshToken,
		h.Token.TokenType,
		expiry,
	).Scan(&h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context, identity string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM oauth_credentials WHERE identity = $1`, identity); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}

	return nil
}
