package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/store"
	"github.com/aussiebroadwan/idkit/pkg/cryptox"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

type LoginService struct {
	Store store.Store
}

// Authenticate checks login (username or email) and password against the
// application's directory, or against storeID when one is given.
func (s *LoginService) Authenticate(ctx context.Context, appID, storeID, login, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	dirID, err := resolveStore(ctx, s.Store, appID, storeID)
	if err != nil {
		return domain.Account{}, err
	}

	acct, err := s.Store.Accounts().GetAccountByLogin(ctx, dirID, login)
	if errors.Is(err, store.ErrNotFound) {
		l.Debug("login attempt for unknown account", slog.String("application_id", appID))
		return domain.Account{}, ErrInvalidLogin
	}
	if err != nil {
		return domain.Account{}, err
	}

	if err := cryptox.VerifyPassword(password, acct.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Debug("login attempt with wrong password", slog.String("account_id", acct.ID))
			return domain.Account{}, ErrInvalidLogin
		}
		return domain.Account{}, err
	}

	if !acct.IsEnabled() {
		return domain.Account{}, ErrAccountDisabled
	}
	return acct, nil
}

// resolveStore returns the directory a request targets. Applications have a
// single mapped directory; naming any other store is an error.
func resolveStore(ctx context.Context, st store.Store, appID, storeID string) (string, error) {
	app, err := st.Applications().GetApplicationByID(ctx, appID)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if storeID != "" && storeID != app.DirectoryID {
		return "", ErrForeignStore
	}
	return app.DirectoryID, nil
}
