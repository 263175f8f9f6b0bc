package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/castlemilk/cardkeeper/internal/store"
	"github.com/castlemilk/cardkeeper/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

// Runs against the Firestore emulator only; each subtest gets its own project
// so collections start empty.
func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		project := fmt.Sprintf("cardkeeper-test-%d", time.Now().UnixNano())
		s, err := store.OpenFirestore(context.Background(), project, "")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
