package service

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/castlemilk/cardkeeper/internal/syncer"
)

func (s *CardService) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncer.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.engine.Sync(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleListCards returns active cards, most recently updated first.
func (s *CardService) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListAccounts(r.Context(), false)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to list cards: %w", err))
		return
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].UpdatedAt > cards[j].UpdatedAt
	})
	s.writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

// handleCreateCard stores a card entered on the server. Identity and
// timestamps are always assigned here.
func (s *CardService) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var rec model.AccountRecord
	if err := s.decodeJSON(w, r, &rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := rec.ValidateForCreate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	now := s.clock().Unix()
	rec.SyncID = s.newID()
	rec.IsDeleted = false
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if _, err := s.store.UpsertAccount(r.Context(), &rec); err != nil {
		s.writeError(w, r, fmt.Errorf("failed to create card: %w", err))
		return
	}
	s.log.Info("card created", "sync_id", rec.SyncID)
	s.writeJSON(w, http.StatusCreated, &rec)
}

// handleUpdateCard overwrites a live card. The new updatedAt is strictly
// greater than the stored one even if the server clock lags a device that
// wrote last.
func (s *CardService) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var rec model.AccountRecord
	if err := s.decodeJSON(w, r, &rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := rec.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	stored, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if stored.IsDeleted {
		s.writeError(w, r, fmt.Errorf("card %s is deleted: %w", id, store.ErrNotFound))
		return
	}

	rec.SyncID = id
	rec.IsDeleted = false
	rec.CreatedAt = stored.CreatedAt
	rec.UpdatedAt = max(s.clock().Unix(), stored.UpdatedAt+1)

	applied, err := s.store.UpsertAccount(r.Context(), &rec)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to update card: %w", err))
		return
	}
	if !applied {
		// A concurrent write landed with a later timestamp; report what won.
		current, err := s.store.GetAccount(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, current)
		return
	}
	s.writeJSON(w, http.StatusOK, &rec)
}

func (s *CardService) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.SoftDeleteAccount(r.Context(), r.PathValue("id"), s.clock().Unix())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("card deleted", "sync_id", rec.SyncID, "updated_at", rec.UpdatedAt)
	s.writeJSON(w, http.StatusOK, rec)
}
