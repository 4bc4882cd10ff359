// Package codec encodes reading lists as shareable, URL-query-safe tokens.
//
// A token is the unpadded URL-safe base64 form of the compact JSON document
//
//	{"name":"...","description":"...","list":{"https://en.wikipedia.org":["Title",42]}}
//
// Tokens carry no checksum and no version tag.
package codec

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
)

// Codec encodes and decodes collection tokens.
type Codec struct {
	resolver *project.Resolver
}

// New creates a codec that normalizes project keys with resolver.
func New(resolver *project.Resolver) *Codec {
	return &Codec{resolver: resolver}
}

// Normalize rewrites every project key to its canonical origin. Keys that
// resolve to the same origin are merged in sorted key order, dropping
// repeated pages.
func (c *Codec) Normalize(titlesByProject map[string][]domain.PageKey) map[string][]domain.PageKey {
	projects := make([]string, 0, len(titlesByProject))
	for p := range titlesByProject {
		projects = append(projects, p)
	}
	sort.Strings(projects)

	out := make(map[string][]domain.PageKey, len(titlesByProject))
	seen := make(map[string]map[domain.PageKey]struct{}, len(titlesByProject))
	for _, p := range projects {
		origin := c.resolver.ResolveOrigin(p)
		if seen[origin] == nil {
			seen[origin] = make(map[domain.PageKey]struct{})
			out[origin] = []domain.PageKey{}
		}
		for _, key := range titlesByProject[p] {
			if _, dup := seen[origin][key]; dup {
				continue
			}
			seen[origin][key] = struct{}{}
			out[origin] = append(out[origin], key)
		}
	}
	return out
}

// Encode serializes a list into a token.
func (c *Codec) Encode(name, description string, titlesByProject map[string][]domain.PageKey) (string, error) {
	doc := domain.CollectionToken{
		Name:            name,
		Description:     description,
		TitlesByProject: c.Normalize(titlesByProject),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode collection: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a token produced by Encode. Any malformed token yields an
// error matching domain.ErrDecode.
func (c *Codec) Decode(token string) (*domain.CollectionToken, error) {
	raw, err := decodeBase64(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	var doc domain.CollectionToken
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	// null and {} unmarshal cleanly but are not collections
	if doc.Name == "" && doc.TitlesByProject == nil {
		return nil, fmt.Errorf("%w: token has neither a name nor a list", domain.ErrDecode)
	}
	if doc.TitlesByProject == nil {
		doc.TitlesByProject = map[string][]domain.PageKey{}
	}
	return &doc, nil
}

// decodeBase64 accepts both alphabets, with or without padding, so tokens
// produced by browser btoa() also decode.
func decodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty token")
	}
	s = strings.TrimRight(s, "=")
	if strings.ContainsAny(s, "+/") {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return base64.RawURLEncoding.DecodeString(s)
}
