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
	"github.com/aussiebroadwan/idkit/pkg/idx"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

// NewAccount is the input for AccountService.CreateAccount. Status defaults
// to ENABLED.
type NewAccount struct {
	Username  string
	Email     string
	Password  string
	GivenName string
	Surname   string
	Status    string
}

type AccountService struct {
	Store store.Store
}

func (s *AccountService) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	app, err := s.Store.Applications().GetApplicationByID(ctx, id)
	return app, mapStoreErr(err)
}

func (s *AccountService) GetDirectory(ctx context.Context, id string) (domain.Directory, error) {
	dir, err := s.Store.Directories().GetDirectoryByID(ctx, id)
	return dir, mapStoreErr(err)
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, id)
	return acct, mapStoreErr(err)
}

// CreateAccount adds an account to the application's default directory.
func (s *AccountService) CreateAccount(ctx context.Context, appID string, in NewAccount) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	app, err := s.GetApplication(ctx, appID)
	if err != nil {
		return domain.Account{}, err
	}

	status := in.Status
	if status == "" {
		status = domain.StatusEnabled
	}
	if !validAccountStatus(status) {
		return domain.Account{}, ErrInvalidStatus
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	acct := domain.Account{
		ID:           idx.New().String(),
		DirectoryID:  app.DirectoryID,
		Username:     in.Username,
		Email:        in.Email,
		GivenName:    in.GivenName,
		Surname:      in.Surname,
		PasswordHash: hash,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	acct.UpdatedAt = acct.CreatedAt

	if err := s.Store.Accounts().CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrDuplicateAccount
		}
		return domain.Account{}, err
	}

	l.Info("account created", slog.String("account_id", acct.ID), slog.String("application_id", appID))
	return acct, nil
}

func (s *AccountService) SetAccountStatus(ctx context.Context, id, status string) (domain.Account, error) {
	if !validAccountStatus(status) {
		return domain.Account{}, ErrInvalidStatus
	}
	if err := s.Store.Accounts().UpdateAccountStatus(ctx, id, status); err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	return s.GetAccount(ctx, id)
}

func validAccountStatus(s string) bool {
	switch s {
	case domain.StatusEnabled, domain.StatusDisabled, domain.StatusUnverified:
		return true
	}
	return false
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
