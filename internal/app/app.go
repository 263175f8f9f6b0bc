// Package app wires configuration into a running set of components shared
// by the server and the ingest command.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/castlemilk/cardkeeper/internal/config"
	"github.com/castlemilk/cardkeeper/internal/extraction"
	"github.com/castlemilk/cardkeeper/internal/ingest"
	"github.com/castlemilk/cardkeeper/internal/mailbox"
	"github.com/castlemilk/cardkeeper/internal/matching"
	"github.com/castlemilk/cardkeeper/internal/service"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/castlemilk/cardkeeper/internal/syncer"
)

// Version is overridden at build time with -ldflags "-X ...app.Version=...".
var Version = "dev"

type App struct {
	Store    store.Store
	Engine   *syncer.Engine
	Pipeline *ingest.Pipeline
	Mail     *mailbox.IMAPClient
	Service  *service.CardService
}

// OpenStore opens the backend selected by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return store.NewMemoryStore(), nil
	case config.DriverSQLite:
		s, err := store.OpenSQLite(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "data_dir", cfg.DataDir)
		return s, nil
	case config.DriverFirestore:
		s, err := store.OpenFirestore(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
		if err != nil {
			return nil, err
		}
		logger.Info("using firestore store", "project", cfg.FirestoreProject)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// New builds every component on top of an already opened store.
func New(cfg config.Config, st store.Store, logger *slog.Logger) (*App, error) {
	policy, err := ingest.ParsePolicy(cfg.Ingest.AmbiguousPolicy)
	if err != nil {
		return nil, err
	}
	tokens, err := cfg.Server.TokenSet()
	if err != nil {
		return nil, err
	}

	engine := syncer.NewEngine(st, syncer.WithLogger(logger))
	pipeline := ingest.New(st, st,
		extraction.NewDecoder(logger),
		extraction.NewExtractor(cfg.BankTable(), nil),
		matching.NewMatcher(),
		ingest.Options{AmbiguousPolicy: policy, Logger: logger})
	mail := mailbox.NewIMAPClient(mailbox.IMAPOptions{
		FetchLimit:  cfg.Mail.FetchLimit,
		DialTimeout: cfg.Mail.DialTimeout,
		Retry:       cfg.Mail.Retry,
		Logger:      logger,
	})

	svc := service.NewCardService(service.Options{
		Store:           st,
		Engine:          engine,
		Pipeline:        pipeline,
		Mail:            mail,
		Tokens:          tokens,
		DefaultMailHost: cfg.Mail.DefaultHost,
		IngestTimeout:   cfg.Ingest.Timeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Version:         Version,
		Logger:          logger,
	})

	return &App{
		Store:    st,
		Engine:   engine,
		Pipeline: pipeline,
		Mail:     mail,
		Service:  svc,
	}, nil
}

// MailSource reads the stored mailbox configuration on every fetch.
func (a *App) MailSource(defaultHost string) mailbox.Source {
	return &mailbox.IMAPSource{Client: a.Mail, Config: ingest.StoredConfig(a.Store, defaultHost)}
}
