// Package wiki queries remote MediaWiki action APIs for page info.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
)

// maxRedirectHops bounds redirect chain following inside one response.
const maxRedirectHops = 8

// PageInfoQuerier looks up page info on one remote wiki.
// QueryPages returns exactly one PageInfo per key, in key order. All keys
// passed in one call must be of the same kind.
type PageInfoQuerier interface {
	QueryPages(ctx context.Context, endpoint string, keys []domain.PageKey) ([]domain.PageInfo, error)
}

// ClientConfig holds configuration for the MediaWiki client.
type ClientConfig struct {
	UserAgent     string
	ThumbnailSize int
	Timeout       time.Duration
}

// Client implements PageInfoQuerier against the MediaWiki action API.
type Client struct {
	client        *resty.Client
	thumbnailSize int
}

// NewClient creates a new MediaWiki API client.
func NewClient(cfg *ClientConfig) *Client {
	client := resty.New()
	client.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	size := cfg.ThumbnailSize
	if size <= 0 {
		size = 200
	}

	return &Client{
		client:        client,
		thumbnailSize: size,
	}
}

// formatversion=2 query response
type queryResponse struct {
	Query *queryResult `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

type queryResult struct {
	Normalized []titleMapping `json:"normalized"`
	Redirects  []titleMapping `json:"redirects"`
	Pages      []apiPage      `json:"pages"`
}

type titleMapping struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type apiPage struct {
	PageID      int64  `json:"pageid"`
	Title       string `json:"title"`
	Missing     bool   `json:"missing"`
	Invalid     bool   `json:"invalid"`
	Description string `json:"description"`
	Thumbnail   *struct {
		Source string `json:"source"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"thumbnail"`
}

// QueryPages fetches title, thumbnail and short description for every key.
func (c *Client) QueryPages(ctx context.Context, endpoint string, keys []domain.PageKey) ([]domain.PageInfo, error) {
	if len(keys) == 0 {
		return []domain.PageInfo{}, nil
	}

	kind := keys[0].Kind()
	values := make([]string, len(keys))
	for i, k := range keys {
		if k.Kind() != kind {
			return nil, fmt.Errorf("mixed page key kinds in one query")
		}
		values[i] = k.String()
	}

	params := map[string]string{
		"action":        "query",
		"format":        "json",
		"formatversion": "2",
		"prop":          "pageimages|description",
		"piprop":        "thumbnail",
		"pithumbsize":   strconv.Itoa(c.thumbnailSize),
		"pilimit":       "max",
	}
	if kind == domain.KeyKindID {
		// no redirect resolution: the returned page keeps the requested id
		params["pageids"] = strings.Join(values, "|")
	} else {
		params["titles"] = strings.Join(values, "|")
		params["redirects"] = "1"
	}

	var resp queryResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&resp).
		Get(endpoint)

	if err != nil {
		return nil, &domain.TransportError{Endpoint: endpoint, Err: err}
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, &domain.TransportError{
			Endpoint: endpoint,
			Status:   httpResp.StatusCode(),
			Err:      errors.New(httpResp.Status()),
		}
	}

	// resty leaves resp empty for non-JSON bodies
	if !resty.IsJSONType(httpResp.Header().Get("Content-Type")) {
		return nil, &domain.TransportError{
			Endpoint: endpoint,
			Status:   httpResp.StatusCode(),
			Err:      fmt.Errorf("unexpected content type %q", httpResp.Header().Get("Content-Type")),
		}
	}

	if resp.Error != nil {
		return nil, &domain.TransportError{
			Endpoint: endpoint,
			Status:   httpResp.StatusCode(),
			Err:      fmt.Errorf("api error %s: %s", resp.Error.Code, resp.Error.Info),
		}
	}

	if resp.Query == nil {
		return nil, &domain.TransportError{
			Endpoint: endpoint,
			Status:   httpResp.StatusCode(),
			Err:      errors.New("response has no query result"),
		}
	}

	if kind == domain.KeyKindID {
		return matchByID(keys, resp.Query.Pages), nil
	}
	return matchByTitle(keys, resp.Query), nil
}

func matchByID(keys []domain.PageKey, pages []apiPage) []domain.PageInfo {
	byID := make(map[int64]apiPage, len(pages))
	for _, p := range pages {
		byID[p.PageID] = p
	}

	out := make([]domain.PageInfo, len(keys))
	for i, k := range keys {
		id, _ := k.ID()
		p, ok := byID[id]
		if !ok {
			out[i] = domain.PageInfo{PageID: id, Missing: true}
			continue
		}
		out[i] = toPageInfo(p)
	}
	return out
}

func matchByTitle(keys []domain.PageKey, q *queryResult) []domain.PageInfo {
	normalized := make(map[string]string, len(q.Normalized))
	for _, m := range q.Normalized {
		normalized[m.From] = m.To
	}
	redirects := make(map[string]string, len(q.Redirects))
	for _, m := range q.Redirects {
		redirects[m.From] = m.To
	}
	byTitle := make(map[string]apiPage, len(q.Pages))
	for _, p := range q.Pages {
		byTitle[p.Title] = p
	}

	out := make([]domain.PageInfo, len(keys))
	for i, k := range keys {
		title, _ := k.Title()
		if to, ok := normalized[title]; ok {
			title = to
		}
		for hop := 0; hop < maxRedirectHops; hop++ {
			to, ok := redirects[title]
			if !ok {
				break
			}
			title = to
		}

		p, ok := byTitle[title]
		if !ok {
			out[i] = domain.PageInfo{Title: title, Missing: true}
			continue
		}
		out[i] = toPageInfo(p)
	}
	return out
}

func toPageInfo(p apiPage) domain.PageInfo {
	info := domain.PageInfo{
		PageID:  p.PageID,
		Title:   p.Title,
		Missing: p.Missing || p.Invalid,
	}
	if info.Missing {
		return info
	}
	info.Description = p.Description
	if p.Thumbnail != nil {
		info.Thumbnail = &domain.Thumbnail{
			Source: p.Thumbnail.Source,
			Width:  p.Thumbnail.Width,
			Height: p.Thumbnail.Height,
		}
	}
	return info
}
