package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/domain"
	"github.com/aussiebroadwan/tether/internal/auth/store"
)

type sessionTokensRepo struct {
	q querier
}

const sessionColumns = `id, account_id, processed_hash, token_hash, expires_at,
	is_valid, invalidated_at, last_used_at, created_at, updated_at`

func (r *sessionTokensRepo) CreateSessionToken(ctx context.Context, t domain.SessionToken) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO session_tokens
			(id, account_id, processed_hash, token_hash, expires_at, is_valid,
			 invalidated_at, last_used_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.ProcessedHash, t.TokenHash, t.ExpiresAt.UTC(), t.IsValid,
		mapOptionalTime(t.InvalidatedAt), mapOptionalTime(t.LastUsedAt), now, now,
	)
	if isUniqueViolation(err, "session_tokens_one_live") {
		return store.ErrLiveTokenExists
	}
	if isUniqueViolation(err, "token_hash") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionTokensRepo) GetSessionTokenByHash(ctx context.Context, tokenHash string) (domain.SessionToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM session_tokens WHERE token_hash = ?`, tokenHash)
	return scanSessionToken(row)
}

func (r *sessionTokensRepo) FindLiveTokenByAccount(ctx context.Context, accountID string, now time.Time) (domain.SessionToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM session_tokens
		WHERE account_id = ? AND is_valid = 1 AND expires_at > ?
		LIMIT 1`,
		accountID, now.UTC(),
	)
	return scanSessionToken(row)
}

func (r *sessionTokensRepo) FindLiveTokenByHash(ctx context.Context, processedHash string, now time.Time) (domain.SessionToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM session_tokens
		WHERE processed_hash = ? AND is_valid = 1 AND expires_at > ?
		LIMIT 1`,
		processedHash, now.UTC(),
	)
	return scanSessionToken(row)
}

func (r *sessionTokensRepo) SweepExpiredTokens(ctx context.Context, accountID string, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE session_tokens
		SET is_valid = 0, invalidated_at = ?, updated_at = ?
		WHERE account_id = ? AND is_valid = 1 AND expires_at <= ?`,
		now.UTC(), now.UTC(), accountID, now.UTC(),
	)
	return err
}

func (r *sessionTokensRepo) SweepAllExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE session_tokens
		SET is_valid = 0, invalidated_at = ?, updated_at = ?
		WHERE is_valid = 1 AND expires_at <= ?`,
		now.UTC(), now.UTC(), now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionTokensRepo) InvalidateToken(ctx context.Context, tokenID string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE session_tokens
		SET is_valid = 0, invalidated_at = ?, updated_at = ?
		WHERE id = ? AND is_valid = 1`,
		now.UTC(), now.UTC(), tokenID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sessionTokensRepo) InvalidateAccountTokens(ctx context.Context, accountID string, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE session_tokens
		SET is_valid = 0, invalidated_at = ?, updated_at = ?
		WHERE account_id = ? AND is_valid = 1`,
		now.UTC(), now.UTC(), accountID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionTokensRepo) InvalidateAccountTokensExcept(ctx context.Context, accountID, keepProcessedHash string, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE session_tokens
		SET is_valid = 0, invalidated_at = ?, updated_at = ?
		WHERE account_id = ? AND is_valid = 1 AND processed_hash != ?`,
		now.UTC(), now.UTC(), accountID, keepProcessedHash,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionTokensRepo) TouchLastUsed(ctx context.Context, tokenID string, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE session_tokens SET last_used_at = ? WHERE id = ?`,
		now.UTC(), tokenID,
	)
	return err
}

func (r *sessionTokensRepo) ListLiveTokensByAccount(ctx context.Context, accountID string, now time.Time) ([]domain.SessionToken, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM session_tokens
		WHERE account_id = ? AND is_valid = 1 AND expires_at > ?
		ORDER BY created_at DESC`,
		accountID, now.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.SessionToken
	for rows.Next() {
		t, err := scanSessionToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *sessionTokensRepo) DeleteStaleTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM session_tokens
		WHERE (is_valid = 0 AND COALESCE(invalidated_at, updated_at) < ?)
		   OR expires_at < ?`,
		cutoff.UTC(), cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSessionToken(row rowScanner) (domain.SessionToken, error) {
	var (
		t                         domain.SessionToken
		invalidatedAt, lastUsedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.AccountID, &t.ProcessedHash, &t.TokenHash, &t.ExpiresAt,
		&t.IsValid, &invalidatedAt, &lastUsedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.SessionToken{}, mapNotFound(err)
	}
	t.InvalidatedAt = mapNullTimePtr(invalidatedAt)
	t.LastUsedAt = mapNullTimePtr(lastUsedAt)
	return t, nil
}
