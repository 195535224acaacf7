package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	acceptJSON    = "application/vnd.github+json"
	acceptRaw     = "application/vnd.github.raw+json"
	apiVersion    = "2022-11-28"
	maxBodyBytes  = 4 << 20
	maxListPages  = 3
	contentTypeJS = "application/json"
)

var (
	nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)
	lastLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="last"`)
)

// Item is a loosely typed element of a list response.
type Item any

// getJSON makes a GET request and decodes the JSON answer into target.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, target any) error {
	data, _, err := c.get(ctx, c.APIURL+path, q, acceptJSON)
	if err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

// getRaw makes a GET request asking for the raw media type.
func (c *Client) getRaw(ctx context.Context, path string, q url.Values) ([]byte, error) {
	data, _, err := c.get(ctx, c.APIURL+path, q, acceptRaw)
	return data, err
}

// getItems makes GET requests to a list endpoint and returns items from up to
// maxListPages pages, following the Link header.
func (c *Client) getItems(ctx context.Context, path string, q url.Values) ([]Item, error) {
	var items []Item

	next := c.APIURL + path
	for page := 0; page < maxListPages && next != ""; page++ {
		data, header, err := c.get(ctx, next, q, acceptJSON)
		if err != nil {
			return nil, err
		}

		var batch []Item
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		items = append(items, batch...)

		next = ""
		if m := nextLinkPattern.FindStringSubmatch(header.Get("Link")); m != nil {
			c.logger.Debug("additional page needed", zap.String("path", path), zap.Int("page", page+2))
			next = m[1]
			// The next link already carries the query.
			q = nil
		}
	}

	return items, nil
}

// countItems returns the size of a list endpoint without walking it. It asks
// for one item per page and reads the page number of the rel="last" link.
func (c *Client) countItems(ctx context.Context, path string, q url.Values) (int, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("per_page", "1")

	data, header, err := c.get(ctx, c.APIURL+path, q, acceptJSON)
	if err != nil {
		return 0, err
	}

	if m := lastLinkPattern.FindStringSubmatch(header.Get("Link")); m != nil {
		last, err := url.Parse(m[1])
		if err != nil {
			return 0, fmt.Errorf("parse last link of %s: %w", path, err)
		}
		n, err := strconv.Atoi(last.Query().Get("page"))
		if err != nil {
			return 0, fmt.Errorf("last page of %s: %w", path, err)
		}
		return n, nil
	}

	var batch []Item
	if err := json.Unmarshal(data, &batch); err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return len(batch), nil
}

// postGraphQL sends a GraphQL query and returns the raw answer.
func (c *Client) postGraphQL(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GraphQLURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req, acceptJSON)
	req.Header.Set("Content-Type", contentTypeJS)

	data, _, err := c.do(req)
	return data, err
}

func (c *Client) get(ctx context.Context, rawURL string, q url.Values, accept string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}

	req = c.setHeaders(req, accept)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, http.Header, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.Header, fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, resp.Header, fmt.Errorf("%w: %s %s", ErrBadStatus, resp.Status, req.URL.Path)
	}

	return data, resp.Header, nil
}

func (c *Client) setHeaders(req *http.Request, accept string) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	return req
}

// decodeItems converts loosely typed items into typed structs using json tags.
func decodeItems(items []Item, target any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(items)
}
