package kv

import (
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/tax_filing_app/internal/core/ports/repositories"
)

// ProviderOption customises NewRepositoryProvider.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for repair write-back failures.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(c *providerConfig) { c.logger = logger }
}

// WithClock replaces time.Now, e.g. to pin the year of seeded filings in tests.
func WithClock(now func() time.Time) ProviderOption {
	return func(c *providerConfig) { c.now = now }
}

// NewRepositoryProvider builds every repository over one store.
func NewRepositoryProvider(store portsrepo.KVStore, opts ...ProviderOption) portsrepo.RepositoryProvider {
	cfg := providerConfig{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	return portsrepo.RepositoryProvider{
		ClientRepo:  newClientRepository(store, cfg.logger, cfg.now),
		MessageRepo: newMessageRepository(store),
		UserRepo:    newUserRepository(store),
	}
}
