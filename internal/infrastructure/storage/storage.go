// Package storage adaptadores de KeyValueStore para el estado de sesión: archivo local,
// Redis o PostgreSQL, según SESSION_STORE.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-pos/internal/domain/repository"
	"github.com/jhoicas/backoffice-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-pos/pkg/config"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// New abre el backend configurado. El cierre devuelto libera conexiones (no-op para archivo).
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.KeyValueStore, func(), error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Session.Store {
	case config.SessionStoreFile:
		log.Info().Str("file", cfg.Session.File).Bool("encrypted", cfg.Session.Secret != "").Msg("sesión en archivo")
		return NewFileStore(cfg.Session.File, cfg.Session.Secret), func() {}, nil

	case config.SessionStoreRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("sesión en redis")
		return NewRedisStore(client), func() { _ = client.Close() }, nil

	case config.SessionStorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewKVRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Str("table", postgres.KVTable).Msg("sesión en postgres")
		return repo, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("storage: backend desconocido %q", cfg.Session.Store)
}
