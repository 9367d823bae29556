// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mail composes MIME messages with file attachments and delivers
// them over SMTP with implicit TLS.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	netmail "net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Message is an outgoing e-mail.
type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Attachments []string // file paths

	// Date defaults to the current time.
	Date time.Time
}

const lineLen = 76

// Compose renders m as a multipart/mixed message: one text/plain part for
// the body followed by one base64 part per attachment.
func Compose(m Message) ([]byte, error) {
	if len(m.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}
	if m.From != "" {
		if err := checkAddress(m.From); err != nil {
			return nil, err
		}
	}
	for _, to := range m.To {
		if err := checkAddress(to); err != nil {
			return nil, err
		}
	}
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(m.Body)); err != nil {
		return nil, err
	}

	for _, path := range m.Attachments {
		if err := attach(mw, path); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&msg, "Date: %s\r\n", date.Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// checkAddress rejects anything that is not a single RFC 5322 address, which
// includes values carrying CR or LF.
func checkAddress(addr string) error {
	if strings.ContainsAny(addr, "\r\n") {
		return fmt.Errorf("invalid address %q: contains line break", addr)
	}
	if _, err := netmail.ParseAddress(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

func attach(mw *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading attachment: %w", err)
	}

	name := filepath.Base(path)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType("application/octet-stream", map[string]string{"name": name})},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > lineLen {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:lineLen]); err != nil {
			return err
		}
		encoded = encoded[lineLen:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}
