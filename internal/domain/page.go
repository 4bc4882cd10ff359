package domain

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// KeyKind tells which half of a PageKey is set.
type KeyKind int

const (
	KeyKindTitle KeyKind = iota
	KeyKindID
)

func (k KeyKind) String() string {
	if k == KeyKindID {
		return "id"
	}
	return "title"
}

// PageKey identifies a page on a remote wiki either by numeric page id or by title.
// The zero value is the empty title.
type PageKey struct {
	kind  KeyKind
	id    int64
	title string
}

// PageID returns a key that looks a page up by its numeric id.
func PageID(id int64) PageKey {
	return PageKey{kind: KeyKindID, id: id}
}

// PageTitle returns a key that looks a page up by title.
func PageTitle(title string) PageKey {
	return PageKey{kind: KeyKindTitle, title: title}
}

// Kind returns whether the key is an id or a title.
func (k PageKey) Kind() KeyKind {
	return k.kind
}

// ID returns the page id and true when the key is an id key.
func (k PageKey) ID() (int64, bool) {
	return k.id, k.kind == KeyKindID
}

// Title returns the title and true when the key is a title key.
func (k PageKey) Title() (string, bool) {
	return k.title, k.kind == KeyKindTitle
}

// String renders the key the way the remote API expects it in a pipe-separated list.
func (k PageKey) String() string {
	if k.kind == KeyKindID {
		return strconv.FormatInt(k.id, 10)
	}
	return k.title
}

// MarshalJSON encodes id keys as JSON numbers and title keys as JSON strings.
func (k PageKey) MarshalJSON() ([]byte, error) {
	if k.kind == KeyKindID {
		return []byte(strconv.FormatInt(k.id, 10)), nil
	}
	return json.Marshal(k.title)
}

// UnmarshalJSON accepts either a JSON integer or a JSON string.
func (k *PageKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty page key")
	}
	if data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*k = PageTitle(title)
		return nil
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("page key must be a string or an integer: %s", data)
	}
	*k = PageID(id)
	return nil
}

// PageRef is one requested page: which project it lives on, how to look it up,
// and the caller's identifier for it (usually a list entry row id).
type PageRef struct {
	EntryID string  `json:"id"`
	Project string  `json:"project"`
	Key     PageKey `json:"key"`
}

// Thumbnail is a page image as reported by the remote API.
type Thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PageInfo is the raw page-info record for one requested key.
type PageInfo struct {
	PageID      int64
	Title       string
	Description string
	Thumbnail   *Thumbnail
	Missing     bool
}
