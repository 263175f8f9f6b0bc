package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/castlemilk/cardkeeper/internal/ingest"
	"github.com/castlemilk/cardkeeper/internal/mailbox"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
)

// handleListBills serves GET /api/v1/bills?cardSyncId=&unassigned=&limit=.
func (s *CardService) handleListBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.StatementFilter{AccountSyncID: q.Get("cardSyncId")}

	if v := q.Get("unassigned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, badRequestf("unassigned must be a boolean, got %q", v))
			return
		}
		filter.Unassigned = b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, badRequestf("limit must be a non-negative integer, got %q", v))
			return
		}
		filter.Limit = n
	}

	bills, err := s.store.ListStatements(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to list bills: %w", err))
		return
	}
	if bills == nil {
		bills = []*model.Statement{}
	}
	s.writeJSON(w, http.StatusOK, bills)
}

// handleFetchBills runs one ingestion pass against the stored mailbox.
func (s *CardService) handleFetchBills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.ingestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ingestTimeout)
		defer cancel()
	}

	src := &mailbox.IMAPSource{
		Client: s.mail,
		Config: ingest.StoredConfig(s.store, s.defaultHost),
	}
	sum, err := s.pipeline.Run(ctx, src)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}
