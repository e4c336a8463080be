// Package open selects and opens a store backend from configuration.
package open

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/retry"
	"github.com/matzehuels/timeslice/pkg/store"
	"github.com/matzehuels/timeslice/pkg/store/bolt"
	"github.com/matzehuels/timeslice/pkg/store/file"
	"github.com/matzehuels/timeslice/pkg/store/mongo"
	"github.com/matzehuels/timeslice/pkg/store/redis"
)

// Store opens the backend named by cfg.Type. Redis and mongo connections
// are retried with backoff before giving up.
func Store(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Type {
	case config.StorageFile, "":
		s, err = file.Open(cfg.DataDir)
	case config.StorageBolt:
		s, err = bolt.Open(filepath.Join(cfg.DataDir, bolt.DefaultFile))
	case config.StorageRedis:
		s, err = dial(ctx, func() (*redis.Store, error) {
			return redis.Open(ctx, redis.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
		})
	case config.StorageMongo:
		if cfg.Mongo.Database == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "storage.mongo.database is required")
		}
		s, err = dial(ctx, func() (*mongo.Store, error) {
			return mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage type %q", cfg.Type)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s store", cfg.Type)
	}
	return s, nil
}

// connectRetry governs how often networked backends are dialed.
var connectRetry = retry.Policy{Attempts: 3, Delay: 250 * time.Millisecond}

// dial opens a networked store, retrying failed connections until ctx is
// done.
func dial[S any](ctx context.Context, open func() (S, error)) (S, error) {
	var s S
	err := retry.Do(ctx, connectRetry, func() error {
		var err error
		s, err = open()
		if err != nil && ctx.Err() == nil {
			return retry.Retryable(err)
		}
		return err
	})
	return s, err
}
