package mailbox

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// MboxSource reads the newest Limit messages of an mbox file. It is used to
// replay exported mail through the ingestion pipeline.
type MboxSource struct {
	Path  string
	Limit int
}

func (s *MboxSource) Fetch(ctx context.Context) ([]RawMessage, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &Error{Code: ErrMboxRead, Message: "failed to open mbox", Host: s.Path, Cause: err}
	}
	defer f.Close()
	return ReadMbox(ctx, f, s.Limit)
}

// ReadMbox parses every message in r and keeps the last limit (all when
// limit <= 0). Sequence numbers are 1-based positions in the file.
func ReadMbox(ctx context.Context, r io.Reader, limit int) ([]RawMessage, error) {
	mr := mbox.NewReader(r)
	var out []RawMessage
	for seq := uint32(1); ; seq++ {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Code: ErrCancelled, Message: "mbox read cancelled", Cause: err}
		}
		msgReader, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &Error{Code: ErrMboxRead, Message: "failed to read mbox message", Cause: err}
		}
		body, err := io.ReadAll(msgReader)
		if err != nil {
			return nil, &Error{Code: ErrMboxRead, Message: "failed to read mbox message", Cause: err}
		}
		out = append(out, rawFromBytes(seq, body))
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	if out == nil {
		out = []RawMessage{}
	}
	return out, nil
}

// ParseRaw builds a RawMessage from one RFC 5322 message, for replaying
// messages saved as .eml files.
func ParseRaw(body []byte) RawMessage {
	return rawFromBytes(0, body)
}

// rawFromBytes fills header fields from the message itself. Header parse
// failures leave them empty; the body is still kept for decoding.
func rawFromBytes(seq uint32, body []byte) RawMessage {
	raw := RawMessage{SeqNum: seq, Body: body}

	entity, err := message.Read(bytes.NewReader(body))
	if entity != nil && (err == nil || message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)) {
		h := mail.Header{Header: entity.Header}
		if id, err := h.MessageID(); err == nil && id != "" {
			raw.MessageID = "<" + id + ">"
		}
		if subj, err := h.Subject(); err == nil {
			raw.Subject = subj
		} else {
			raw.Subject = h.Get("Subject")
		}
		if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
			raw.From = from[0].Address
		}
		if d, err := h.Date(); err == nil {
			raw.Date = d
		}
	}
	if raw.MessageID == "" {
		sum := sha256.Sum256(body)
		raw.MessageID = "mbox:" + hex.EncodeToString(sum[:16])
	}
	raw.Subject = strings.TrimSpace(raw.Subject)
	return raw
}
