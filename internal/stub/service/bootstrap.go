package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/store"
	"github.com/aussiebroadwan/idkit/pkg/idx"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

type BootstrapService struct {
	Store store.Store
	Token string // pre-configured bootstrap token; empty disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Applications().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the first application and its default directory.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token string,
	req domain.BootstrapData,
) (domain.Application, domain.Directory, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.Application{}, domain.Directory{}, ErrBootstrapUnauthorized
	}

	if done, err := s.IsBootstrapped(ctx); err != nil {
		return domain.Application{}, domain.Directory{}, err
	} else if done {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.Application{}, domain.Directory{}, ErrBootstrapAlready
	}

	now := time.Now().UTC()
	dir := domain.Directory{
		ID:        idx.New().String(),
		Name:      req.DirectoryName,
		Status:    domain.StatusEnabled,
		CreatedAt: now,
	}
	app := domain.Application{
		ID:          idx.New().String(),
		Name:        req.ApplicationName,
		Description: req.Description,
		Status:      domain.StatusEnabled,
		DirectoryID: dir.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Directories().CreateDirectory(ctx, dir); err != nil {
			return err
		}
		return tx.Applications().CreateApplication(ctx, app)
	})
	if err != nil {
		l.Error("bootstrap failed", slog.Any("error", err))
		return domain.Application{}, domain.Directory{}, err
	}

	l.Info("successfully bootstrapped system",
		slog.String("application_id", app.ID),
		slog.String("directory_id", dir.ID),
	)
	return app, dir, nil
}
