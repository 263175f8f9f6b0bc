package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
)

type mailConfigRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IMAPHost string `json:"imapHost"`
}

func (req mailConfigRequest) config(defaultHost string) model.MailConfig {
	return model.MailConfig{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		IMAPHost: strings.TrimSpace(req.IMAPHost),
	}.WithDefaults(defaultHost)
}

// handleGetMailConfig never returns the password. data is null when nothing
// has been saved.
func (s *CardService) handleGetMailConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.GetMailConfig(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to load mail config: %w", err))
		return
	}
	view := cfg.View()
	if view.IMAPHost == "" {
		view.IMAPHost = s.defaultHost
	}
	s.writeJSON(w, http.StatusOK, view)
}

// handleSaveMailConfig replaces the single stored configuration. An empty
// password keeps the stored one when the address is unchanged, so the
// settings form can be re-saved without re-entering the secret.
func (s *CardService) handleSaveMailConfig(w http.ResponseWriter, r *http.Request) {
	var req mailConfigRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg := req.config(s.defaultHost)
	if cfg.Email == "" {
		s.writeError(w, r, badRequestf("email is required"))
		return
	}

	if cfg.Password == "" {
		existing, err := s.store.GetMailConfig(r.Context())
		switch {
		case err == nil && existing.Email == cfg.Email:
			cfg.Password = existing.Password
		case err != nil && !errors.Is(err, store.ErrNotFound):
			s.writeError(w, r, fmt.Errorf("failed to load mail config: %w", err))
			return
		}
		if cfg.Password == "" {
			s.writeError(w, r, badRequestf("password is required"))
			return
		}
	}

	cfg.UpdatedAt = s.clock().Unix()
	if err := s.store.SaveMailConfig(r.Context(), &cfg); err != nil {
		s.writeError(w, r, fmt.Errorf("failed to save mail config: %w", err))
		return
	}
	s.log.Info("mail config saved", "email", cfg.Email, "host", cfg.IMAPHost)
	s.writeJSON(w, http.StatusOK, cfg.View())
}

// handleTestMailConfig checks the submitted credentials without storing
// them. A failed check is a normal outcome: it is reported with HTTP 200 and
// success=false so the settings form can show the reason.
func (s *CardService) handleTestMailConfig(w http.ResponseWriter, r *http.Request) {
	var req mailConfigRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg := req.config(s.defaultHost)
	if !cfg.Configured() {
		s.writeError(w, r, badRequestf("email and password are required"))
		return
	}

	if err := s.mail.Test(r.Context(), cfg); err != nil {
		_, msg := mapError(err)
		s.log.Info("mail config test failed", "host", cfg.IMAPHost, "error", err)
		s.writeEnvelope(w, http.StatusOK, envelope{Success: false, Error: msg})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "connection succeeded"})
}
