// Package service exposes card sync, card management, statement ingestion
// and mail configuration over a JSON HTTP API under /api/v1.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/castlemilk/cardkeeper/internal/auth"
	"github.com/castlemilk/cardkeeper/internal/ingest"
	"github.com/castlemilk/cardkeeper/internal/mailbox"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/castlemilk/cardkeeper/internal/syncer"
	"github.com/google/uuid"
)

//go:generate mockgen -source=card_service.go -destination=mail_mock.go -package=service

// HealthPath is served without authentication.
const HealthPath = "/api/v1/health"

// DefaultMaxBodyBytes caps request bodies; card images travel inline.
const DefaultMaxBodyBytes = 32 << 20

// MailClient is the mailbox access the service needs. *mailbox.IMAPClient
// implements it.
type MailClient interface {
	Test(ctx context.Context, cfg model.MailConfig) error
	FetchRecent(ctx context.Context, cfg model.MailConfig) ([]mailbox.RawMessage, error)
}

// Options carries the collaborators and limits of a CardService.
type Options struct {
	Store    store.Store
	Engine   *syncer.Engine
	Pipeline *ingest.Pipeline
	Mail     MailClient
	// Tokens guards every route but health; nil or empty leaves the API open.
	Tokens *auth.TokenSet

	DefaultMailHost string
	IngestTimeout   time.Duration
	MaxBodyBytes    int64
	Version         string
	Clock           func() time.Time
	NewID           func() string
	Logger          *slog.Logger
}

// CardService implements the HTTP handlers.
type CardService struct {
	store    store.Store
	engine   *syncer.Engine
	pipeline *ingest.Pipeline
	mail     MailClient
	tokens   *auth.TokenSet

	defaultHost   string
	ingestTimeout time.Duration
	maxBody       int64
	version       string
	clock         func() time.Time
	newID         func() string
	log           *slog.Logger
}

func NewCardService(opts Options) *CardService {
	s := &CardService{
		store:         opts.Store,
		engine:        opts.Engine,
		pipeline:      opts.Pipeline,
		mail:          opts.Mail,
		tokens:        opts.Tokens,
		defaultHost:   opts.DefaultMailHost,
		ingestTimeout: opts.IngestTimeout,
		maxBody:       opts.MaxBodyBytes,
		version:       opts.Version,
		clock:         nowFunc(opts.Clock),
		newID:         opts.NewID,
		log:           loggerOrDefault(opts.Logger).With("component", "http"),
	}
	if s.defaultHost == "" {
		s.defaultHost = model.DefaultIMAPHost
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.version == "" {
		s.version = "dev"
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Handler returns the API routes behind token authentication. CORS and h2c
// are layered on by NewHTTPHandler.
func (s *CardService) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	mux.HandleFunc("POST /api/v1/sync", s.handleSync)

	mux.HandleFunc("GET /api/v1/cards", s.handleListCards)
	mux.HandleFunc("POST /api/v1/cards", s.handleCreateCard)
	mux.HandleFunc("PUT /api/v1/cards/{id}", s.handleUpdateCard)
	mux.HandleFunc("DELETE /api/v1/cards/{id}", s.handleDeleteCard)

	mux.HandleFunc("GET /api/v1/bills", s.handleListBills)
	mux.HandleFunc("POST /api/v1/bills/fetch", s.handleFetchBills)

	mux.HandleFunc("GET /api/v1/email-config", s.handleGetMailConfig)
	mux.HandleFunc("POST /api/v1/email-config", s.handleSaveMailConfig)
	mux.HandleFunc("POST /api/v1/email-config/test", s.handleTestMailConfig)

	return auth.Middleware(auth.Options{
		Tokens: s.tokens,
		Public: []string{HealthPath},
		Deny:   s.writeError,
		Logger: s.log,
	})(mux)
}

func (s *CardService) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"timestamp": s.clock().Unix(),
	})
}
