// Package mailbox retrieves raw statement mail from an IMAP inbox or an mbox
// file.
package mailbox

import (
	"context"
	"fmt"
	"time"
)

// DefaultFetchLimit is how many of the most recent messages one run reads.
const DefaultFetchLimit = 100

// RawMessage is one fetched message before decoding.
type RawMessage struct {
	SeqNum uint32
	UID    uint32
	// MessageID is the stable identity used to deduplicate statements.
	MessageID string
	From      string
	Subject   string
	Date      time.Time
	Body      []byte
}

// Source yields the messages for one ingestion run.
type Source interface {
	Fetch(ctx context.Context) ([]RawMessage, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]RawMessage, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]RawMessage, error) {
	return f(ctx)
}

func fallbackMessageID(uidValidity, uid uint32) string {
	return fmt.Sprintf("imap:%d:%d", uidValidity, uid)
}
