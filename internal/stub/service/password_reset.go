package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/store"
	"github.com/aussiebroadwan/idkit/pkg/cryptox"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

const DefaultResetTokenTTL = 24 * time.Hour

// ResetToken is a freshly minted token. Token is the only copy of the
// plaintext value; the store keeps its fingerprint.
type ResetToken struct {
	domain.PasswordResetToken
	Token string
}

type PasswordResetService struct {
	Store store.Store
	TTL   time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *PasswordResetService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateToken starts a reset for the account with email. The stub does not
// send mail; the token is returned to the caller and logged at debug level.
func (s *PasswordResetService) CreateToken(ctx context.Context, appID, storeID, email string) (ResetToken, error) {
	dirID, err := resolveStore(ctx, s.Store, appID, storeID)
	if err != nil {
		return ResetToken{}, err
	}

	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, dirID, email)
	if err != nil {
		return ResetToken{}, mapStoreErr(err)
	}

	token, err := cryptox.NewSecret()
	if err != nil {
		return ResetToken{}, err
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	now := s.now()
	rec := domain.PasswordResetToken{
		TokenHash:     cryptox.Fingerprint(token),
		ApplicationID: appID,
		AccountID:     acct.ID,
		Email:         acct.Email,
		ExpiresAt:     now.Add(ttl),
		CreatedAt:     now,
	}
	if err := s.Store.ResetTokens().CreateResetToken(ctx, rec); err != nil {
		return ResetToken{}, err
	}

	slogx.FromContext(ctx).Debug("password reset token issued",
		slog.String("account_id", acct.ID),
		slog.Time("expires_at", rec.ExpiresAt),
	)
	return ResetToken{PasswordResetToken: rec, Token: token}, nil
}

// VerifyToken returns the token record if it is live and belongs to appID.
func (s *PasswordResetService) VerifyToken(ctx context.Context, appID, token string) (domain.PasswordResetToken, error) {
	rec, err := s.Store.ResetTokens().GetActiveResetToken(ctx, cryptox.Fingerprint(token), s.now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.PasswordResetToken{}, ErrInvalidResetToken
	}
	if err != nil {
		return domain.PasswordResetToken{}, err
	}
	if rec.ApplicationID != appID {
		return domain.PasswordResetToken{}, ErrInvalidResetToken
	}
	return rec, nil
}

// ResetPassword consumes token and sets the account's new password. The
// token cannot be used again.
func (s *PasswordResetService) ResetPassword(ctx context.Context, appID, token, password string) (domain.PasswordResetToken, error) {
	rec, err := s.VerifyToken(ctx, appID, token)
	if err != nil {
		return domain.PasswordResetToken{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.PasswordResetToken{}, fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.ResetTokens().DeleteResetToken(ctx, rec.TokenHash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken // consumed concurrently
			}
			return err
		}
		return tx.Accounts().UpdatePasswordHash(ctx, rec.AccountID, hash)
	})
	if err != nil {
		return domain.PasswordResetToken{}, err
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("account_id", rec.AccountID))
	return rec, nil
}
