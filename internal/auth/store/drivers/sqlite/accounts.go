package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/domain"
	"github.com/aussiebroadwan/tether/internal/auth/store"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, username, email, password_hash, is_active, created_at, updated_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.IsActive, now, now,
	)
	if isUniqueViolation(err, "accounts.") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	return scanAccount(row)
}

func (r *accountsRepo) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, accountID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsActive,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}
