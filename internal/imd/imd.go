// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imd downloads automatic weather station data from the IMD AWS
// portal: one CSV per station network and state over a date range.
package imd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/internal/httputil"
	"github.com/pdiddy/flash/pkg/types"
)

const (
	dateLayout   = "02/01/2006"
	defaultSpan  = 31 * 24 * time.Hour
	endpointPath = "userdetails.aspx"
)

// DefaultRange returns the portal-formatted dates for now and 31 days later.
func DefaultRange(now time.Time) (from, to string) {
	return now.Format(dateLayout), now.Add(defaultSpan).Format(dateLayout)
}

// Result holds the outcome of a download run.
type Result struct {
	Saved  int
	Failed int
	Files  []string
}

// HasFailures reports whether any state could not be downloaded.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Client talks to the portal.
type Client struct {
	cfg     types.IMDConfig
	http    *http.Client
	limiter *rate.Limiter
	out     io.Writer
}

// NewClient validates cfg and prepares a paced HTTP client. Progress lines
// go to out.
func NewClient(cfg types.IMDConfig, client *http.Client, out io.Writer) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, failure.New(failure.ConfigInvalid, "imd", "",
			fmt.Errorf("IMD username and password are required (secrets imd-username, imd-password)"))
	}
	if cfg.BaseURL == "" {
		return nil, failure.New(failure.ConfigInvalid, "imd", "", fmt.Errorf("base URL is required"))
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if out == nil {
		out = io.Discard
	}

	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	return &Client{
		cfg:     cfg,
		http:    client,
		limiter: rate.NewLimiter(limit, 1),
		out:     out,
	}, nil
}

// endpoint builds the query URL for one data type and state. Dates are
// escaped so their slashes travel as %2F.
func (c *Client) endpoint(dataType string, state int, from, to string) string {
	return fmt.Sprintf("%s%s?Dtype=%s&State=%d&Dist=0&Loc=0&FromDate=%s&ToDate=%s&Time=",
		c.cfg.BaseURL, endpointPath, url.QueryEscape(dataType), state,
		url.QueryEscape(from), url.QueryEscape(to))
}

// Download fetches every configured data type and state in order. A state
// that fails is reported and skipped; only setup errors and cancellation
// abort the run.
func (c *Client) Download(ctx context.Context, from, to string) (Result, error) {
	var result Result
	if err := os.MkdirAll(c.cfg.DataDir, 0o755); err != nil {
		return result, fmt.Errorf("creating data directory %s: %w", c.cfg.DataDir, err)
	}

	for _, dataType := range c.cfg.DataTypes {
		for state := c.cfg.FirstState; state <= c.cfg.LastState; state++ {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			pageURL := c.endpoint(dataType, state, from, to)
			fmt.Fprintln(c.out, pageURL)

			path, err := c.downloadState(ctx, pageURL, dataType, state)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				result.Failed++
				fmt.Fprintf(c.out, "error %s: %v\n", pageURL, err)
				continue
			}
			result.Saved++
			result.Files = append(result.Files, path)
			fmt.Fprintf(c.out, "saved: %s\n", path)
		}
	}

	fmt.Fprintf(c.out, "\nDownload summary: %d saved, %d failed\n", result.Saved, result.Failed)
	return result, nil
}

func (c *Client) downloadState(ctx context.Context, pageURL, dataType string, state int) (string, error) {
	hidden, err := c.formFields(ctx, pageURL)
	if err != nil {
		// The portal accepts a bare login post; the hidden fields only help.
		fmt.Fprintf(c.out, "warning: reading form %s: %v\n", pageURL, err)
		hidden = url.Values{}
	}

	form := loginForm(hidden, c.cfg.Username, c.cfg.Password)
	page, err := c.postForm(ctx, pageURL, form)
	if err != nil {
		return "", err
	}

	link, err := downloadLink(page, pageURL)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%d.csv", dataType, state)
	path := filepath.Join(c.cfg.DataDir, name)
	if err := c.saveCSV(ctx, link, path); err != nil {
		return "", err
	}
	return path, nil
}

// loginForm merges the scraped hidden inputs with the credentials and the
// download button, the way a browser submits the portal form.
func loginForm(hidden url.Values, username, password string) url.Values {
	form := url.Values{}
	for k, v := range hidden {
		form[k] = v
	}
	for _, k := range []string{"__EVENTTARGET", "__EVENTARGUMENT"} {
		if _, ok := form[k]; !ok {
			form.Set(k, "")
		}
	}
	form.Set("txtUserName", username)
	form.Set("txtPassword", password)
	form.Set("btnSave", "Download")
	return form
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, err
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readBody(resp, rawURL)
}

func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readBody(resp, rawURL)
}

func readBody(resp *http.Response, rawURL string) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.New(failure.NetworkError, "read", rawURL, err)
	}
	return data, nil
}

// saveCSV downloads link into path through a temporary file so a failed
// transfer never leaves a truncated CSV behind.
func (c *Client) saveCSV(ctx context.Context, link, path string) error {
	data, err := c.get(ctx, link)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
