package mailbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/retry"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/charset"
)

func init() {
	// Envelope subjects from the target banks are routinely GBK encoded words.
	imap.CharsetReader = charset.Reader
}

// session is the subset of *client.Client used by a fetch.
type session interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
	Terminate() error
}

// DialFunc opens an unauthenticated session to host ("host:port").
type DialFunc func(ctx context.Context, host string) (session, error)

// IMAPOptions configures an IMAPClient.
type IMAPOptions struct {
	FetchLimit  int
	DialTimeout time.Duration
	Retry       retry.Config
	Logger      *slog.Logger
}

// IMAPClient fetches recent messages from the INBOX of an IMAP account over
// implicit TLS. The mailbox is opened read-only and bodies are fetched with
// BODY.PEEK so no flags change on the server.
type IMAPClient struct {
	opts IMAPOptions
	dial DialFunc
	log  *slog.Logger
}

// NewIMAPClient returns a client that dials real servers over TLS.
func NewIMAPClient(opts IMAPOptions) *IMAPClient {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &IMAPClient{opts: opts, log: logger.With("component", "mailbox")}
	c.dial = c.dialTLS
	return c
}

func (c *IMAPClient) dialTLS(ctx context.Context, host string) (session, error) {
	serverName, _, err := net.SplitHostPort(host)
	if err != nil {
		return nil, err
	}
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.opts.DialTimeout},
		Config:    &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12},
	}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, err
	}
	cl, err := client.New(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return cl, nil
}

// open dials and authenticates, retrying transient connect failures.
func (c *IMAPClient) open(ctx context.Context, cfg model.MailConfig) (session, error) {
	host := cfg.IMAPHost
	if host == "" {
		host = model.DefaultIMAPHost
	}
	return retry.Do(ctx, c.opts.Retry, func(ctx context.Context) (session, error) {
		s, err := c.dial(ctx, host)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &Error{Code: ErrCancelled, Message: "dial cancelled", Host: host, Cause: ctx.Err()}
			}
			c.log.Warn("imap dial failed", "host", host, "error", err)
			return nil, &Error{Code: ErrConnect, Message: "failed to connect to " + host, Host: host, Retryable: true, Cause: err}
		}
		if err := s.Login(cfg.Email, cfg.Password); err != nil {
			s.Terminate()
			var netErr net.Error
			if errors.As(err, &netErr) || errors.Is(err, io.EOF) {
				return nil, &Error{Code: ErrConnect, Message: "connection lost during login", Host: host, Retryable: true, Cause: err}
			}
			return nil, &Error{Code: ErrAuth, Message: "login rejected for " + cfg.Email, Host: host, Cause: err}
		}
		return s, nil
	})
}

// Test checks that cfg can connect and authenticate. Nothing is fetched.
func (c *IMAPClient) Test(ctx context.Context, cfg model.MailConfig) error {
	s, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}
	if err := s.Logout(); err != nil {
		c.log.Debug("imap logout failed", "error", err)
	}
	return nil
}

// FetchRecent returns up to FetchLimit of the newest INBOX messages in
// ascending sequence order. An empty mailbox yields an empty slice. Any
// failure after dialing discards what was read and returns an *Error.
func (c *IMAPClient) FetchRecent(ctx context.Context, cfg model.MailConfig) ([]RawMessage, error) {
	s, err := c.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Logout(); err != nil {
			c.log.Debug("imap logout failed", "error", err)
		}
	}()
	stop := context.AfterFunc(ctx, func() { s.Terminate() })
	defer stop()

	msgs, err := c.fetch(s, cfg.IMAPHost)
	if ctx.Err() != nil {
		return nil, &Error{Code: ErrCancelled, Message: "fetch cancelled", Host: cfg.IMAPHost, Cause: ctx.Err()}
	}
	if err != nil {
		return nil, err
	}
	c.log.Info("fetched messages", "host", cfg.IMAPHost, "count", len(msgs))
	return msgs, nil
}

func (c *IMAPClient) fetch(s session, host string) ([]RawMessage, error) {
	status, err := s.Select("INBOX", true)
	if err != nil {
		return nil, &Error{Code: ErrSelect, Message: "failed to open INBOX", Host: host, Cause: err}
	}
	if status.Messages == 0 {
		return []RawMessage{}, nil
	}

	from := uint32(1)
	if status.Messages > uint32(c.opts.FetchLimit) {
		from = status.Messages - uint32(c.opts.FetchLimit) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, status.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	ch := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.Fetch(seqset, items, ch)
	}()

	out := make([]RawMessage, 0, status.Messages-from+1)
	var readErr error
	for msg := range ch {
		if readErr != nil {
			continue
		}
		raw, err := toRawMessage(msg, section, status.UidValidity)
		if err != nil {
			readErr = err
			continue
		}
		out = append(out, raw)
	}
	if err := <-done; err != nil {
		return nil, &Error{Code: ErrFetch, Message: "failed to fetch messages", Host: host, Cause: err}
	}
	if readErr != nil {
		return nil, &Error{Code: ErrFetch, Message: "failed to read message body", Host: host, Cause: readErr}
	}
	return out, nil
}

func toRawMessage(msg *imap.Message, section *imap.BodySectionName, uidValidity uint32) (RawMessage, error) {
	raw := RawMessage{SeqNum: msg.SeqNum, UID: msg.Uid}

	body := msg.GetBody(section)
	if body == nil {
		// Servers answer BODY.PEEK[] with BODY[]; take the only section returned.
		for _, lit := range msg.Body {
			body = lit
			break
		}
	}
	if body != nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return raw, fmt.Errorf("message %d: %w", msg.SeqNum, err)
		}
		raw.Body = data
	}

	if env := msg.Envelope; env != nil {
		raw.MessageID = strings.TrimSpace(env.MessageId)
		raw.Subject = env.Subject
		raw.Date = env.Date
		if len(env.From) > 0 && env.From[0] != nil {
			raw.From = formatAddress(env.From[0])
		}
	}
	if raw.MessageID == "" {
		raw.MessageID = fallbackMessageID(uidValidity, msg.Uid)
	}
	return raw, nil
}

func formatAddress(a *imap.Address) string {
	if a.HostName == "" {
		return a.MailboxName
	}
	return a.MailboxName + "@" + a.HostName
}

// Fetcher is implemented by *IMAPClient.
type Fetcher interface {
	FetchRecent(ctx context.Context, cfg model.MailConfig) ([]RawMessage, error)
}

// IMAPSource binds a client to a configuration loader so each Fetch reads the
// current stored configuration.
type IMAPSource struct {
	Client Fetcher
	Config func(ctx context.Context) (model.MailConfig, error)
}

func (s *IMAPSource) Fetch(ctx context.Context) ([]RawMessage, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	return s.Client.FetchRecent(ctx, cfg)
}
