package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/idkit/pkg/idsite"
	"github.com/aussiebroadwan/idkit/pkg/nonce"
)

// openNonceStore builds the configured replay store. The returned func
// releases it.
func openNonceStore(ctx context.Context, cfg Config, logger *slog.Logger) (idsite.NonceStore, func(), error) {
	switch cfg.NonceStore {
	case NonceStoreMemory, "":
		s := nonce.NewMemoryStore()
		j := nonce.NewJanitor(s, logger, 0)
		j.Start()
		return s, j.Stop, nil

	case NonceStoreRedis:
		s, err := nonce.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis nonce store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil

	case NonceStoreSQLite:
		s, err := nonce.OpenSQLite("file:" + cfg.NonceDatabaseFile + "?_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite nonce store: %w", err)
		}
		j := nonce.NewJanitor(s, logger, 0)
		j.Start()
		return s, func() {
			j.Stop()
			_ = s.Close()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown nonce store %q", cfg.NonceStore)
	}
}
