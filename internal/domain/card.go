package domain

// Card is the rendering-ready form of one page in a collection.
// From holds the key the page was requested with; Title holds the canonical
// title after redirects.
type Card struct {
	EntryID     string     `json:"id"`
	Project     string     `json:"project"`
	From        PageKey    `json:"from"`
	PageID      int64      `json:"pageid,omitempty"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail"`
	Missing     bool       `json:"missing,omitempty"`
}

// CollectionToken is the decoded content of a shareable list token.
// TitlesByProject is keyed by canonical project origin.
type CollectionToken struct {
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	TitlesByProject map[string][]PageKey `json:"list"`
}
