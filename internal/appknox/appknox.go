// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package appknox restarts a dynamic scan on the Appknox API: log in for a
// token, shut the running scan down, wait, then start it again.
package appknox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/internal/httputil"
	"github.com/pdiddy/flash/pkg/types"
)

// DebugBaseURL is the local development server used with --debug.
const DebugBaseURL = "http://0.0.0.0:8000/"

// session is the token login response.
type session struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// userID renders the user field, which the API sends as a number.
func (s session) userID() string {
	raw := strings.TrimSpace(string(s.User))
	if unq, err := strconv.Unquote(raw); err == nil {
		return unq
	}
	return raw
}

// Client drives the scan restart.
type Client struct {
	cfg  types.AppknoxConfig
	http *http.Client
	out  io.Writer
}

// NewClient validates cfg. Each request URL is printed to out.
func NewClient(cfg types.AppknoxConfig, client *http.Client, out io.Writer) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, failure.New(failure.ConfigInvalid, "appknox", "",
			fmt.Errorf("appknox username and password are required (secrets appknox-username, appknox-password)"))
	}
	if cfg.BaseURL == "" {
		return nil, failure.New(failure.ConfigInvalid, "appknox", "", fmt.Errorf("base URL is required"))
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if out == nil {
		out = io.Discard
	}
	return &Client{cfg: cfg, http: client, out: out}, nil
}

// RestartScan restarts the dynamic scan for fileID and returns the body of
// the final start request.
func (c *Client) RestartScan(ctx context.Context, fileID int) (string, error) {
	sess, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	form := url.Values{"token": {sess.Token}, "user": {sess.userID()}}

	if _, err := c.post(ctx, fmt.Sprintf("api/dynamic_shutdown/%d", fileID), form, &sess); err != nil {
		return "", err
	}

	if c.cfg.RestartDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.cfg.RestartDelay):
		}
	}

	body, err := c.post(ctx, fmt.Sprintf("api/dynamic/%d", fileID), form, &sess)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) login(ctx context.Context) (session, error) {
	form := url.Values{"username": {c.cfg.Username}, "password": {c.cfg.Password}}
	body, err := c.post(ctx, "api/token/new.json", form, nil)
	if err != nil {
		return session{}, err
	}

	var sess session
	if err := json.Unmarshal(body, &sess); err != nil || sess.Token == "" {
		if err == nil {
			err = fmt.Errorf("no token in response")
		}
		return session{}, failure.New(failure.NetworkError, "login", c.cfg.BaseURL,
			fmt.Errorf("%w: %s", err, strings.TrimSpace(string(body))))
	}
	return sess, nil
}

// post sends a form to path relative to the base URL, with basic auth when
// sess is set.
func (c *Client) post(ctx context.Context, path string, form url.Values, sess *session) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	fmt.Fprintln(c.out, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if sess != nil {
		req.SetBasicAuth(sess.userID(), sess.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.New(failure.NetworkError, "read", endpoint, err)
	}
	return body, nil
}
