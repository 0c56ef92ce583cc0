package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/domain"
	"github.com/aussiebroadwan/tether/internal/auth/store"
	"github.com/aussiebroadwan/tether/pkg/cryptox"
	"github.com/aussiebroadwan/tether/pkg/slogx"
)

// AccountService owns account lifecycle operations. Anything that changes
// an account's standing also clears its session tokens, in the same
// transaction, so a token never outlives its account's active state.
type AccountService struct {
	Store store.Store
}

// GetAccountByID fetches an account by id.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (domain.Account, error) {
	return s.Store.Accounts().GetAccountByID(ctx, accountID)
}

// Deactivate flips the account inactive and invalidates every session
// token atomically.
func (s *AccountService) Deactivate(ctx context.Context, accountID string) error {
	now := time.Now().UTC()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetAccountActive(ctx, accountID, false); err != nil {
			return err
		}
		_, err := tx.SessionTokens().InvalidateAccountTokens(ctx, accountID, now)
		return err
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("account deactivated", "account_id", accountID)
	return nil
}

// Reactivate restores an inactive account after re-verifying its
// credentials. No session is issued; the caller logs in afterwards.
func (s *AccountService) Reactivate(ctx context.Context, username, password string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}

	if !account.IsActive {
		if err := s.Store.Accounts().SetAccountActive(ctx, account.ID, true); err != nil {
			return domain.Account{}, err
		}
		account.IsActive = true
		slogx.FromContext(ctx).Info("account reactivated", "account_id", account.ID)
	}

	return account, nil
}

// ChangePassword verifies the current password, swaps in the new hash and
// invalidates all session tokens so every device re-authenticates.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return ErrValidation
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdatePasswordHash(ctx, accountID, newHash); err != nil {
			return err
		}
		_, err := tx.SessionTokens().InvalidateAccountTokens(ctx, accountID, now)
		return err
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", "account_id", accountID)
	return nil
}

// Delete removes the account after re-verifying its password. Session
// tokens go with it via the schema cascade.
func (s *AccountService) Delete(ctx context.Context, accountID, password string) error {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.Store.Accounts().DeleteAccount(ctx, accountID); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("account deleted", "account_id", accountID)
	return nil
}
