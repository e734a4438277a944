package impl

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/gosocial/internal/config"
	"github.com/sidereusnuntius/gosocial/internal/service"
	"github.com/sidereusnuntius/gosocial/internal/storage"
)

type AppService struct {
	Identity          config.Identity
	Keys              storage.KeyStore
	Users             storage.UserDirectory
	Posts             storage.PostStore
	OutboxConcurrency int
}

func New(cfg *config.Configuration, keys storage.KeyStore, users storage.UserDirectory, posts storage.PostStore) service.Service {
	concurrency := cfg.OutboxConcurrency
	if concurrency <= 0 {
		concurrency = config.DefaultOutboxConcurrency
	}

	return &AppService{
		Identity:          cfg.Identity,
		Keys:              keys,
		Users:             users,
		Posts:             posts,
		OutboxConcurrency: concurrency,
	}
}

// handleStorageErr converts a store failure into the service's error taxonomy. Missing data becomes
// ErrNotFound; anything else is logged and becomes ErrInternal.
func handleStorageErr(err error, op, username string) error {
	switch {
	case errors.Is(err, storage.ErrNotExist):
		return service.ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Debug().Err(err).Str("op", op).Str("user", username).Msg("request abandoned")
	default:
		log.Error().Err(err).Str("op", op).Str("user", username).Msg("storage failure")
	}
	return fmt.Errorf("%w: %w", service.ErrInternal, err)
}
