package main

import (
	"fmt"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/adapters/file"
	"github.com/aretw0/weave/internal/config"
	"github.com/aretw0/weave/pkg/adapters/memory"
	"github.com/aretw0/weave/pkg/adapters/redis"
	"github.com/aretw0/weave/pkg/persistence/middleware"
	"github.com/aretw0/weave/pkg/ports"
)

// backend is the variable store selected by the config, plus what it needs
// to shut down.
type backend struct {
	store  ports.VariableStore
	locker ports.Locker
	close  func() error
}

func openStore(c *config.Config) (*backend, error) {
	b := &backend{close: func() error { return nil }}

	switch c.Store.Driver {
	case config.DriverFile:
		b.store = file.New(c.Store.Path)
	case config.DriverRedis:
		rs := redis.New(c.Store.Redis.Addr, c.Store.Redis.Password, c.Store.Redis.DB,
			redis.WithPrefix(c.Store.Redis.Prefix))
		b.store = rs
		b.locker = redis.NewLocker(rs.Client(), rs.Prefix())
		b.close = rs.Close
	default:
		b.store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if len(c.Store.Redact) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(c.Store.Redact))
	}
	if c.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(c.Store.EncryptionKey)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	b.store = middleware.Chain(b.store, mws...)
	return b, nil
}

// newService wires a weave.Service from the loaded config.
func newService(b *backend, extra ...weave.Option) *weave.Service {
	opts := []weave.Option{
		weave.WithStore(b.store),
		weave.WithLogger(logger),
		weave.WithOptionsProvider(memory.NewOptionsProvider(cfg.Options.Latency)),
		weave.WithOptionsTTL(cfg.Options.CacheTTL),
	}
	if b.locker != nil {
		opts = append(opts, weave.WithLocker(b.locker))
	}
	return weave.NewService(append(opts, extra...)...)
}
