package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/store"
	"github.com/aussiebroadwan/idkit/pkg/cryptox"
	"github.com/aussiebroadwan/idkit/pkg/idx"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

// APIKey is a key with its secret opened.
type APIKey struct {
	domain.APIKey
	Secret string
}

type APIKeyService struct {
	Store store.Store
	Box   *cryptox.SecretBox
}

// CreateAPIKey issues a new enabled key for an account.
func (s *APIKeyService) CreateAPIKey(ctx context.Context, accountID string) (APIKey, error) {
	if _, err := s.Store.Accounts().GetAccountByID(ctx, accountID); err != nil {
		return APIKey{}, mapStoreErr(err)
	}

	secret, err := cryptox.NewSecret()
	if err != nil {
		return APIKey{}, err
	}
	sealed, err := s.Box.Seal([]byte(secret))
	if err != nil {
		return APIKey{}, fmt.Errorf("seal api key secret: %w", err)
	}

	key := domain.APIKey{
		ID:              idx.New().String(),
		AccountID:       accountID,
		SecretEncrypted: sealed,
		Status:          domain.StatusEnabled,
		CreatedAt:       time.Now().UTC(),
	}
	key.UpdatedAt = key.CreatedAt

	if err := s.Store.APIKeys().CreateAPIKey(ctx, key); err != nil {
		return APIKey{}, err
	}

	slogx.FromContext(ctx).Info("api key created",
		slog.String("api_key_id", key.ID),
		slog.String("account_id", accountID),
	)
	return APIKey{APIKey: key, Secret: secret}, nil
}

// GetAPIKey loads a key and opens its secret.
func (s *APIKeyService) GetAPIKey(ctx context.Context, id string) (APIKey, error) {
	key, err := s.Store.APIKeys().GetAPIKeyByID(ctx, id)
	if err != nil {
		return APIKey{}, mapStoreErr(err)
	}

	secret, err := s.Box.Open(key.SecretEncrypted)
	if err != nil {
		return APIKey{}, fmt.Errorf("open api key secret: %w", err)
	}
	return APIKey{APIKey: key, Secret: string(secret)}, nil
}

// GetApplicationAPIKey returns a key only when its owner lives in the
// application's directory, mirroring how keys are scoped to applications.
func (s *APIKeyService) GetApplicationAPIKey(ctx context.Context, appID, id string) (APIKey, domain.Account, error) {
	app, err := s.Store.Applications().GetApplicationByID(ctx, appID)
	if err != nil {
		return APIKey{}, domain.Account{}, mapStoreErr(err)
	}

	key, err := s.GetAPIKey(ctx, id)
	if err != nil {
		return APIKey{}, domain.Account{}, err
	}

	owner, err := s.Store.Accounts().GetAccountByID(ctx, key.AccountID)
	if err != nil {
		return APIKey{}, domain.Account{}, mapStoreErr(err)
	}
	if owner.DirectoryID != app.DirectoryID {
		return APIKey{}, domain.Account{}, ErrNotFound
	}
	return key, owner, nil
}

func (s *APIKeyService) SetAPIKeyStatus(ctx context.Context, id, status string) (APIKey, error) {
	if status != domain.StatusEnabled && status != domain.StatusDisabled {
		return APIKey{}, ErrInvalidStatus
	}
	if err := s.Store.APIKeys().UpdateAPIKeyStatus(ctx, id, status); err != nil {
		return APIKey{}, mapStoreErr(err)
	}
	return s.GetAPIKey(ctx, id)
}
