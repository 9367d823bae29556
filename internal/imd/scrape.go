// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imd

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoDownloadLink means the portal answered without a data link, which is
// what it does for states with no stations in the requested period.
var ErrNoDownloadLink = errors.New("no DownloadData link in response")

var reDownloadData = regexp.MustCompile(`DownloadData\('([^']+)'\)`)

// formFields fetches the form page and returns its hidden inputs
// (__VIEWSTATE, __EVENTVALIDATION and friends).
func (c *Client) formFields(ctx context.Context, pageURL string) (url.Values, error) {
	page, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return hiddenInputs(page)
}

func hiddenInputs(page []byte) (url.Values, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	fields := url.Values{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := s.Attr("value")
		fields.Set(name, value)
	})
	return fields, nil
}

// downloadLink finds the URL passed to the page's DownloadData(...) call,
// looking at onclick/href attributes and inline scripts first and then
// anywhere in the page, and resolves it against pageURL.
func downloadLink(page []byte, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}

	var raw string
	doc.Find(`[onclick*="DownloadData"], a[href*="DownloadData"], script`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		candidates := []string{s.AttrOr("onclick", ""), s.AttrOr("href", "")}
		if goquery.NodeName(s) == "script" {
			candidates = append(candidates, s.Text())
		}
		for _, text := range candidates {
			if m := reDownloadData.FindStringSubmatch(text); m != nil {
				raw = m[1]
				return false
			}
		}
		return true
	})
	if raw == "" {
		// Fall back to the raw page, e.g. body onload or plain markup.
		m := reDownloadData.FindSubmatch(page)
		if m == nil {
			return "", ErrNoDownloadLink
		}
		raw = string(m[1])
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
