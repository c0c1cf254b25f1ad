package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pawhome/pawhome/internal/model"
)

// Common errors for token repository operations.
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrJTIExists     = errors.New("jti already exists")
)

const constraintJTI = "jwt_jti_key"

// CreateToken records an issued token.
func (r *Repository) CreateToken(ctx context.Context, token *model.Token) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO jwt (jwt_uuid, user_uuid, owner_kind, jti, token_type, token, expires_at, date_joined)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
	`,
		token.ID,
		token.Owner.UserID,
		string(token.Owner.Kind),
		token.JTI,
		token.Type,
		token.Raw,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintJTI {
			return ErrJTIExists
		}
		if _, ok := foreignKeyViolation(err); ok {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetTokenByJTI retrieves a token record by its jti claim.
func (r *Repository) GetTokenByJTI(ctx context.Context, jti string) (*model.Token, error) {
	var (
		tok  model.Token
		kind string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT jwt_uuid, user_uuid, COALESCE(owner_kind, ''), jti, token_type, token, expires_at, date_joined
		FROM jwt
		WHERE jti = $1
	`, jti).Scan(
		&tok.ID,
		&tok.Owner.UserID,
		&kind,
		&tok.JTI,
		&tok.Type,
		&tok.Raw,
		&tok.ExpiresAt,
		&tok.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	tok.Owner.Kind = model.RoleKind(kind)
	return &tok, nil
}

// BlacklistToken marks a token unusable. The token record is created first
// when it was never recorded, then locked while the blacklist row is added,
// all in one transaction. It returns false when the token was already
// blacklisted.
func (r *Repository) BlacklistToken(ctx context.Context, token *model.Token) (bool, error) {
	var created bool
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if token.ID == uuid.Nil {
			token.ID = uuid.New()
		}
		if token.CreatedAt.IsZero() {
			token.CreatedAt = time.Now().UTC()
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO jwt (jwt_uuid, user_uuid, owner_kind, jti, token_type, token, expires_at, date_joined)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
			ON CONFLICT (jti) DO NOTHING
		`,
			token.ID,
			token.Owner.UserID,
			string(token.Owner.Kind),
			token.JTI,
			token.Type,
			token.Raw,
			token.ExpiresAt,
			token.CreatedAt,
		)
		if err != nil {
			if _, ok := foreignKeyViolation(err); ok {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to record token: %w", err)
		}

		var tokenID uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT jwt_uuid FROM jwt WHERE jti = $1 FOR UPDATE`, token.JTI,
		).Scan(&tokenID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTokenNotFound
			}
			return fmt.Errorf("failed to lock token: %w", err)
		}
		token.ID = tokenID

		result, err := tx.Exec(ctx, `
			INSERT INTO jwt_blacklist (token_id, date_joined)
			VALUES ($1, $2)
			ON CONFLICT (token_id) DO NOTHING
		`, tokenID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to blacklist token: %w", err)
		}
		created = result.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// IsBlacklisted reports whether the token with jti has a blacklist entry.
func (r *Repository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var blacklisted bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM jwt_blacklist b
			JOIN jwt t ON t.jwt_uuid = b.token_id
			WHERE t.jti = $1
		)
	`, jti).Scan(&blacklisted)
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return blacklisted, nil
}
