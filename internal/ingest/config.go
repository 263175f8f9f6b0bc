package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
)

// StoredConfig loads the saved mailbox configuration, applying defaultHost.
// Missing or incomplete configuration is reported as ErrNotConfigured.
func StoredConfig(configs store.MailConfigStore, defaultHost string) func(ctx context.Context) (model.MailConfig, error) {
	return func(ctx context.Context) (model.MailConfig, error) {
		cfg, err := configs.GetMailConfig(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return model.MailConfig{}, ErrNotConfigured
		}
		if err != nil {
			return model.MailConfig{}, fmt.Errorf("failed to load mail config: %w", err)
		}
		if !cfg.Configured() {
			return model.MailConfig{}, ErrNotConfigured
		}
		return cfg.WithDefaults(defaultHost), nil
	}
}
