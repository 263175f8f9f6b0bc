package extraction

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/castlemilk/cardkeeper/internal/mailbox"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/emersion/go-message"
	gmcharset "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/ledongthuc/pdf"
	htmlcharset "golang.org/x/net/html/charset"
)

const maxPartBytes = 10 << 20

func init() {
	message.CharsetReader = charsetReader
}

// charsetReader prefers go-message's table and falls back to the WHATWG
// labels known to x/net for anything it does not recognise.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	if r, err := gmcharset.Reader(label, input); err == nil {
		return r, nil
	}
	r, err := htmlcharset.NewReaderLabel(label, input)
	if err != nil {
		return nil, fmt.Errorf("unhandled charset %q", label)
	}
	return r, nil
}

// Outcome summarises what the decoder recovered from a message.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeEmpty     Outcome = "empty"
	OutcomePDFOnly   Outcome = "pdf_only"
	OutcomeMalformed Outcome = "malformed"
)

// DecodedMessage is the text view of one message.
type DecodedMessage struct {
	MessageID string
	Subject   string
	From      string
	Text      string
	Format    model.StatementFormat
	Outcome   Outcome
	PDFPages  int
	// Err is set for structural failures; Text may still be partially filled.
	Err error
}

// Decoder turns raw messages into text. It holds no per-message state and is
// safe for concurrent use.
type Decoder struct {
	log *slog.Logger
}

// NewDecoder creates a message decoder; a nil logger uses slog.Default.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{log: logger.With("component", "decoder")}
}

// Decode walks the MIME tree of raw. text/plain and text/html parts
// contribute text, PDF parts only set the format, images are ignored. An
// unparsable message yields empty text with sender and subject intact.
func (d *Decoder) Decode(raw mailbox.RawMessage) DecodedMessage {
	out := DecodedMessage{
		MessageID: raw.MessageID,
		Subject:   raw.Subject,
		From:      raw.From,
		Format:    model.FormatText,
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw.Body))
	if err != nil && !message.IsUnknownCharset(err) {
		out.Outcome = OutcomeMalformed
		out.Err = &DecodeError{Code: ErrMalformedMIME, Message: "failed to parse message", MessageID: raw.MessageID, Cause: err}
		d.log.Debug("message not decodable", "message_id", raw.MessageID, "error", err)
		return out
	}
	defer mr.Close()

	if out.Subject == "" {
		if subj, err := mr.Header.Subject(); err == nil {
			out.Subject = subj
		}
	}
	if out.From == "" {
		if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
			out.From = from[0].Address
		}
	}

	var texts []string
	var sawPlain, sawHTML, sawPDF bool
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			code := ErrMalformedMIME
			if message.IsUnknownCharset(err) {
				code = ErrUnknownCharset
			}
			out.Err = &DecodeError{Code: code, Message: "failed to read part", MessageID: raw.MessageID, Cause: err}
			break
		}

		ct, filename := partType(p.Header)
		switch {
		case ct == "text/plain":
			data, err := readPart(p.Body)
			if err != nil {
				out.Err = &DecodeError{Code: ErrPartRead, Message: "failed to read text part", MessageID: raw.MessageID, Cause: err}
				continue
			}
			texts = append(texts, string(unwrapBase64(data)))
			sawPlain = true
		case ct == "text/html":
			data, err := readPart(p.Body)
			if err != nil {
				out.Err = &DecodeError{Code: ErrPartRead, Message: "failed to read html part", MessageID: raw.MessageID, Cause: err}
				continue
			}
			texts = append(texts, StripHTML(string(unwrapBase64(data))))
			sawHTML = true
		case ct == "application/pdf" || (ct == "application/octet-stream" && strings.HasSuffix(strings.ToLower(filename), ".pdf")):
			sawPDF = true
			data, err := readPart(p.Body)
			if err == nil {
				out.PDFPages += pdfPageCount(data)
			}
		default:
			// images and other attachments carry no statement text
		}
	}

	out.Text = strings.Join(texts, "\n")
	switch {
	case sawPlain:
		out.Format = model.FormatText
	case sawHTML:
		out.Format = model.FormatHTML
	case sawPDF:
		out.Format = model.FormatPDF
	}

	switch {
	case strings.TrimSpace(out.Text) != "":
		out.Outcome = OutcomeOK
	case sawPDF:
		out.Outcome = OutcomePDFOnly
	case out.Err != nil:
		out.Outcome = OutcomeMalformed
	default:
		out.Outcome = OutcomeEmpty
	}
	if out.Err != nil {
		d.log.Debug("partial decode", "message_id", raw.MessageID, "outcome", out.Outcome, "error", out.Err)
	}
	return out
}

// partType returns the lower-cased media type and, for attachments, the
// file name. mail.PartHeader does not expose ContentType itself.
func partType(h mail.PartHeader) (string, string) {
	switch ph := h.(type) {
	case *mail.InlineHeader:
		ct, _, _ := ph.ContentType()
		return strings.ToLower(ct), ""
	case *mail.AttachmentHeader:
		ct, _, _ := ph.ContentType()
		name, _ := ph.Filename()
		return strings.ToLower(ct), name
	default:
		ct, _, _ := mime.ParseMediaType(h.Get("Content-Type"))
		return strings.ToLower(ct), ""
	}
}

func readPart(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxPartBytes))
}

// unwrapBase64 decodes a part body that is still one base64 block after
// transfer decoding, as some bank mailers double-encode. The decoded form is
// used only when it is printable UTF-8.
func unwrapBase64(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) < 4 {
		return data
	}
	decoded, err := base64.StdEncoding.DecodeString(string(trimmed))
	if err != nil || len(decoded) == 0 || !isPrintableText(decoded) {
		return data
	}
	return decoded
}

func isPrintableText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return false
		}
	}
	return true
}

// pdfPageCount reports pages for logging only; PDF text is not extracted.
func pdfPageCount(data []byte) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			pages = 0
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}
