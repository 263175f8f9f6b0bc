package mailbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/retry"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	loginErr  error
	selectErr error
	fetchErr  error
	messages  uint32

	fetched    *imap.SeqSet
	readOnly   bool
	loggedOut  bool
	terminated bool
}

func (f *fakeSession) Login(username, password string) error { return f.loginErr }

func (f *fakeSession) Select(name string, readOnly bool) (*imap.MailboxStatus, error) {
	f.readOnly = readOnly
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	status := imap.NewMailboxStatus(name, nil)
	status.Messages = f.messages
	status.UidValidity = 42
	return status, nil
}

func (f *fakeSession) Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error {
	defer close(ch)
	f.fetched = seqset
	if f.fetchErr != nil {
		return f.fetchErr
	}
	for _, set := range seqset.Set {
		for seq := set.Start; seq <= set.Stop; seq++ {
			msg := imap.NewMessage(seq, items)
			msg.Uid = seq + 1000
			msg.Envelope = &imap.Envelope{Subject: fmt.Sprintf("statement %d", seq)}
			if seq%2 == 0 {
				msg.Envelope.MessageId = fmt.Sprintf("<%d@bank.example>", seq)
			}
			msg.Envelope.From = []*imap.Address{{MailboxName: "service", HostName: "cmbchina.com"}}
			msg.Body = map[*imap.BodySectionName]imap.Literal{
				{}: bytes.NewBufferString("Subject: x\r\n\r\nbody"),
			}
			ch <- msg
		}
	}
	return nil
}

func (f *fakeSession) Logout() error    { f.loggedOut = true; return nil }
func (f *fakeSession) Terminate() error { f.terminated = true; return nil }

func newFakeClient(s *fakeSession, dialErr error) *IMAPClient {
	c := NewIMAPClient(IMAPOptions{Retry: retry.Config{MaxRetries: 1, InitialDelay: time.Millisecond, BackoffFactor: 1}})
	c.dial = func(ctx context.Context, host string) (session, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return s, nil
	}
	return c
}

var testConfig = model.MailConfig{Email: "me@qq.com", Password: "auth-code", IMAPHost: "imap.qq.com:993"}

func TestFetchRecent_Window(t *testing.T) {
	tests := []struct {
		name      string
		messages  uint32
		wantCount int
		wantFirst uint32
	}{
		{name: "empty mailbox", messages: 0, wantCount: 0},
		{name: "fewer than limit", messages: 7, wantCount: 7, wantFirst: 1},
		{name: "exactly limit", messages: 100, wantCount: 100, wantFirst: 1},
		{name: "more than limit", messages: 250, wantCount: 100, wantFirst: 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSession{messages: tt.messages}
			msgs, err := newFakeClient(s, nil).FetchRecent(context.Background(), testConfig)
			require.NoError(t, err)
			require.NotNil(t, msgs)
			assert.Len(t, msgs, tt.wantCount)
			assert.True(t, s.readOnly, "INBOX must be opened read-only")
			assert.True(t, s.loggedOut)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, msgs[0].SeqNum)
				assert.Equal(t, tt.messages, msgs[len(msgs)-1].SeqNum)
			}
		})
	}
}

func TestFetchRecent_MessageFields(t *testing.T) {
	s := &fakeSession{messages: 2}
	msgs, err := newFakeClient(s, nil).FetchRecent(context.Background(), testConfig)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "imap:42:1001", msgs[0].MessageID, "missing Message-ID falls back to uidvalidity:uid")
	assert.Equal(t, "<2@bank.example>", msgs[1].MessageID)
	assert.Equal(t, "service@cmbchina.com", msgs[0].From)
	assert.Equal(t, "statement 1", msgs[0].Subject)
	assert.Equal(t, uint32(1001), msgs[0].UID)
	assert.Contains(t, string(msgs[0].Body), "body")
}

func TestFetchRecent_Failures(t *testing.T) {
	tests := []struct {
		name     string
		session  *fakeSession
		dialErr  error
		wantCode ErrorCode
	}{
		{name: "dial", session: &fakeSession{}, dialErr: errors.New("connection refused"), wantCode: ErrConnect},
		{name: "login", session: &fakeSession{loginErr: errors.New("NO authentication failed")}, wantCode: ErrAuth},
		{name: "select", session: &fakeSession{selectErr: errors.New("NO no such mailbox")}, wantCode: ErrSelect},
		{name: "fetch", session: &fakeSession{messages: 5, fetchErr: errors.New("BYE")}, wantCode: ErrFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := newFakeClient(tt.session, tt.dialErr).FetchRecent(context.Background(), testConfig)
			assert.Nil(t, msgs, "no partial list on failure")
			var mErr *Error
			require.ErrorAs(t, err, &mErr)
			assert.Equal(t, tt.wantCode, mErr.Code)
			if tt.wantCode == ErrSelect || tt.wantCode == ErrFetch {
				assert.True(t, tt.session.loggedOut, "session must be closed on every path")
			}
		})
	}
}

func TestFetchRecent_AuthNotRetried(t *testing.T) {
	dials := 0
	s := &fakeSession{loginErr: errors.New("NO login failed")}
	c := NewIMAPClient(IMAPOptions{Retry: retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond, BackoffFactor: 1}})
	c.dial = func(ctx context.Context, host string) (session, error) {
		dials++
		return s, nil
	}
	_, err := c.FetchRecent(context.Background(), testConfig)
	require.Error(t, err)
	assert.Equal(t, 1, dials)
}

func TestTest_DoesNotFetch(t *testing.T) {
	s := &fakeSession{messages: 3}
	require.NoError(t, newFakeClient(s, nil).Test(context.Background(), testConfig))
	assert.Nil(t, s.fetched)
	assert.True(t, s.loggedOut)
}

// Exercises the real go-imap client against the library's in-memory server.
func TestFetchRecent_MemoryServer(t *testing.T) {
	srv := server.New(memory.New())
	srv.AllowInsecureAuth = true
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })

	c := NewIMAPClient(IMAPOptions{})
	c.dial = func(ctx context.Context, host string) (session, error) {
		return client.Dial(host)
	}
	msgs, err := c.FetchRecent(context.Background(), model.MailConfig{
		Email:    "username",
		Password: "password",
		IMAPHost: l.Addr().String(),
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.NotEmpty(t, msgs[0].Body)
	assert.NotEmpty(t, msgs[0].MessageID)

	_, err = c.FetchRecent(context.Background(), model.MailConfig{
		Email:    "username",
		Password: "wrong",
		IMAPHost: l.Addr().String(),
	})
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, ErrAuth, mErr.Code)
}
