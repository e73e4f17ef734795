package app

import (
	"fmt"

	"bookstore/internal/usertoken"
	"bookstore/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Tokens      *usertoken.Manager
}

// App is the core application service wiring storage, credential checking,
// and token issuance together.
type App struct {
	store  store.Store
	tokens *usertoken.Manager
}

// New constructs the application. When no Store is injected it opens the
// configured database.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token manager required")
	}
	return &App{store: dataStore, tokens: cfg.Tokens}, nil
}
