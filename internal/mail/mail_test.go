// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	netmail "net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/pkg/types"
)

type parsedPart struct {
	disposition string
	filename    string
	body        []byte
}

func parse(t *testing.T, raw []byte) (*netmail.Message, []parsedPart) {
	t.Helper()
	msg, err := netmail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	var parts []parsedPart
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		if p.Header.Get("Content-Transfer-Encoding") == "base64" {
			data, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(string(data), "\r\n", ""))
			require.NoError(t, err)
		}
		disp, dparams, _ := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
		parts = append(parts, parsedPart{disposition: disp, filename: dparams["filename"], body: data})
	}
	return msg, parts
}

func TestCompose(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "Learning Go.mobi")
	payload := bytes.Repeat([]byte{0, 1, 2, 250, 'x'}, 100)
	require.NoError(t, os.WriteFile(book, payload, 0o644))

	raw, err := Compose(Message{
		From:        "me@example.com",
		To:          []string{"a@kindle.com", "b@kindle.com"},
		Subject:     "Kindle book: Café",
		Body:        "see attached",
		Attachments: []string{book},
		Date:        time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	msg, parts := parse(t, raw)
	assert.Equal(t, "me@example.com", msg.Header.Get("From"))
	assert.Equal(t, "a@kindle.com, b@kindle.com", msg.Header.Get("To"))

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Kindle book: Café", subject)

	date, err := msg.Header.Date()
	require.NoError(t, err)
	assert.True(t, date.Equal(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)))

	require.Len(t, parts, 2)
	assert.Equal(t, "see attached", string(parts[0].body))
	assert.Equal(t, "attachment", parts[1].disposition)
	assert.Equal(t, "Learning Go.mobi", parts[1].filename)
	assert.Equal(t, payload, parts[1].body)
}

func TestComposeErrors(t *testing.T) {
	_, err := Compose(Message{From: "me@example.com", Subject: "x"})
	assert.ErrorContains(t, err, "no recipients")

	_, err = Compose(Message{To: []string{"a@b.c"}, Attachments: []string{"/does/not/exist.pdf"}})
	assert.ErrorContains(t, err, "reading attachment")
}

func TestComposeRejectsInvalidAddresses(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"header injection in recipient", Message{To: []string{"me@kindle.com\r\nBcc: spy@example.com"}}},
		{"bare LF in recipient", Message{To: []string{"me@kindle.com\nX-Evil: 1"}}},
		{"header injection in sender", Message{From: "me@example.com\r\nBcc: spy@example.com", To: []string{"a@kindle.com"}}},
		{"not an address", Message{To: []string{"kindle"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.msg)
			assert.ErrorContains(t, err, "invalid address")
		})
	}
}

func TestComposeAcceptsDisplayName(t *testing.T) {
	raw, err := Compose(Message{From: "Me <me@example.com>", To: []string{"a@kindle.com"}})
	require.NoError(t, err)
	msg, _ := parse(t, raw)
	assert.Equal(t, "Me <me@example.com>", msg.Header.Get("From"))
}

type fakeTransport struct {
	from string
	to   []string
	msg  []byte
	err  error
}

func (f *fakeTransport) Send(_ context.Context, from string, to []string, msg []byte) error {
	f.from, f.to, f.msg = from, to, msg
	return f.err
}

func TestNewSenderRequiresCredentials(t *testing.T) {
	_, err := NewSender(types.MailConfig{Host: "smtp.example.com"})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ConfigInvalid))

	s, err := NewSender(types.MailConfig{Username: "me@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", s.From())
	tr := s.transport.(*tlsTransport)
	assert.Equal(t, "smtp.gmail.com:465", tr.addr)
}

func TestSenderSend(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSenderWithTransport("me@example.com", tr)

	err := s.Send(context.Background(), Message{To: []string{"you@example.com"}, Subject: "hi", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", tr.from)
	assert.Equal(t, []string{"you@example.com"}, tr.to)
	assert.Contains(t, string(tr.msg), "From: me@example.com\r\n")
}

func TestSenderSendNetworkFailure(t *testing.T) {
	s := NewSenderWithTransport("me@example.com", &fakeTransport{err: errors.New("connection refused")})
	err := s.Send(context.Background(), Message{To: []string{"you@example.com"}})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.NetworkError))
	assert.True(t, failure.Retryable(err))
}

func TestKindleMailer(t *testing.T) {
	book := filepath.Join(t.TempDir(), "Title.pdf")
	require.NoError(t, os.WriteFile(book, []byte("%PDF-1.4"), 0o644))

	tr := &fakeTransport{}
	k := &KindleMailer{Sender: NewSenderWithTransport("me@example.com", tr), To: "me@kindle.com"}
	require.NoError(t, k.MailBook(context.Background(), book))

	assert.Equal(t, []string{"me@kindle.com"}, tr.to)
	msg, parts := parse(t, tr.msg)
	assert.Equal(t, "Kindle book: Title.pdf", msg.Header.Get("Subject"))
	require.Len(t, parts, 2)
	assert.Equal(t, "Title.pdf", parts[1].filename)
	assert.Equal(t, "%PDF-1.4", string(parts[1].body))
}
