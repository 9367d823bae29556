// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/pkg/types"
)

const formPage = `<html><body><form method="post">
<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="vs-123" />
<input type="hidden" name="__EVENTVALIDATION" value="ev-456" />
<input type="text" name="txtUserName" />
<input type="password" name="txtPassword" />
<input type="submit" name="btnSave" value="Download" />
</form></body></html>`

// portal imitates the IMD site: state 2 errors, state 3 has no data link,
// every other state links to a CSV under /files/.
type portal struct {
	mu    sync.Mutex
	posts []map[string]string
}

func (p *portal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/userdetails.aspx", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		state := q.Get("State")
		if state == "2" {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if r.Method == http.MethodGet {
			fmt.Fprint(w, formPage)
			return
		}

		assert.NoError(t, r.ParseForm())
		p.mu.Lock()
		p.posts = append(p.posts, map[string]string{
			"state":      state,
			"from":       q.Get("FromDate"),
			"user":       r.PostForm.Get("txtUserName"),
			"pass":       r.PostForm.Get("txtPassword"),
			"btn":        r.PostForm.Get("btnSave"),
			"viewstate":  r.PostForm.Get("__VIEWSTATE"),
			"validation": r.PostForm.Get("__EVENTVALIDATION"),
		})
		p.mu.Unlock()

		if state == "3" {
			fmt.Fprint(w, `<html><body>No data</body></html>`)
			return
		}
		fmt.Fprintf(w, `<html><body><script type="text/javascript">DownloadData('files/%s_%s.csv');</script></body></html>`,
			q.Get("Dtype"), state)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(filepath.Base(r.URL.Path), ".csv")
		fmt.Fprintf(w, "station,temp\n%s,31.5\n", name)
	})
	return mux
}

func testConfig(baseURL, dataDir string) types.IMDConfig {
	return types.IMDConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test"},
		BaseURL:    baseURL,
		DataTypes:  []string{"AWS"},
		FirstState: 1,
		LastState:  4,
		DataDir:    dataDir,
		Username:   "user",
		Password:   "secret",
	}
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	from, to := DefaultRange(now)
	assert.Equal(t, "05/03/2024", from)
	assert.Equal(t, "05/04/2024", to)
}

func TestEndpointEscapesDates(t *testing.T) {
	c, err := NewClient(testConfig("http://imdaws.com", "data"), nil, nil)
	require.NoError(t, err)
	got := c.endpoint("AWS", 7, "01/02/2024", "03/03/2024")
	assert.Equal(t,
		"http://imdaws.com/userdetails.aspx?Dtype=AWS&State=7&Dist=0&Loc=0&FromDate=01%2F02%2F2024&ToDate=03%2F03%2F2024&Time=",
		got)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := testConfig("http://imdaws.com/", "data")
	cfg.Password = ""
	_, err := NewClient(cfg, nil, nil)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ConfigInvalid))
}

func TestDownload(t *testing.T) {
	p := &portal{}
	ts := httptest.NewServer(p.handler(t))
	defer ts.Close()

	dataDir := filepath.Join(t.TempDir(), "data")
	var out bytes.Buffer
	c, err := NewClient(testConfig(ts.URL+"/", dataDir), ts.Client(), &out)
	require.NoError(t, err)

	result, err := c.Download(context.Background(), "01/02/2024", "03/03/2024")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 2, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Equal(t, []string{
		filepath.Join(dataDir, "AWS_1.csv"),
		filepath.Join(dataDir, "AWS_4.csv"),
	}, result.Files)

	data, err := os.ReadFile(filepath.Join(dataDir, "AWS_4.csv"))
	require.NoError(t, err)
	assert.Equal(t, "station,temp\nAWS_4,31.5\n", string(data))
	assert.NoFileExists(t, filepath.Join(dataDir, "AWS_2.csv"))
	assert.NoFileExists(t, filepath.Join(dataDir, "AWS_3.csv"))

	// State 2 fails before any form is posted.
	require.Len(t, p.posts, 3)
	for _, post := range p.posts {
		assert.Equal(t, "user", post["user"])
		assert.Equal(t, "secret", post["pass"])
		assert.Equal(t, "Download", post["btn"])
		assert.Equal(t, "vs-123", post["viewstate"])
		assert.Equal(t, "ev-456", post["validation"])
		assert.Equal(t, "01/02/2024", post["from"])
	}

	log := out.String()
	assert.Contains(t, log, "error "+ts.URL+"/userdetails.aspx?Dtype=AWS&State=2")
	assert.Contains(t, log, ErrNoDownloadLink.Error())
	assert.Contains(t, log, "Download summary: 2 saved, 2 failed")
}

func TestDownloadCancelled(t *testing.T) {
	p := &portal{}
	ts := httptest.NewServer(p.handler(t))
	defer ts.Close()

	c, err := NewClient(testConfig(ts.URL+"/", t.TempDir()), ts.Client(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Download(ctx, "01/02/2024", "03/03/2024")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.posts)
}

func TestHiddenInputs(t *testing.T) {
	fields, err := hiddenInputs([]byte(formPage))
	require.NoError(t, err)
	assert.Equal(t, "vs-123", fields.Get("__VIEWSTATE"))
	assert.Equal(t, "ev-456", fields.Get("__EVENTVALIDATION"))
	assert.NotContains(t, fields, "txtUserName")
}

func TestDownloadLink(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{
			name: "inline script relative",
			page: `<script>DownloadData('files/AWS_1.csv')</script>`,
			want: "http://imdaws.com/files/AWS_1.csv",
		},
		{
			name: "onclick absolute",
			page: `<a href="#" onclick="DownloadData('http://cdn.example.com/x.csv')">get</a>`,
			want: "http://cdn.example.com/x.csv",
		},
		{
			name: "href javascript",
			page: `<a href="javascript:DownloadData('/dl/y.csv')">get</a>`,
			want: "http://imdaws.com/dl/y.csv",
		},
		{
			name: "body onload",
			page: `<html><body onload="DownloadData('files/AWS_1.csv')"></body></html>`,
			want: "http://imdaws.com/files/AWS_1.csv",
		},
		{
			name: "plain markup",
			page: `<div>DownloadData('files/AWS_2.csv')</div>`,
			want: "http://imdaws.com/files/AWS_2.csv",
		},
		{
			name:    "missing",
			page:    `<p>nothing here</p>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := downloadLink([]byte(tt.page), "http://imdaws.com/userdetails.aspx?State=1")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoDownloadLink)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
