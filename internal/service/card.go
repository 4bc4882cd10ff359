package service

import (
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
)

// CardEnricher turns raw page info into cards.
type CardEnricher struct {
	resolver *project.Resolver
}

// NewCardEnricher creates a card enricher that builds URLs with resolver.
func NewCardEnricher(resolver *project.Resolver) *CardEnricher {
	return &CardEnricher{resolver: resolver}
}

// ToCard maps info to a card for projectID. The requested key is kept on the
// card as From; Title is the canonical title reported by the remote wiki.
// EntryID is left for the caller to fill in.
func (e *CardEnricher) ToCard(info domain.PageInfo, requested domain.PageKey, projectID string) domain.Card {
	card := domain.Card{
		Project: e.resolver.ResolveOrigin(projectID),
		From:    requested,
		PageID:  info.PageID,
		Title:   info.Title,
	}

	if info.Missing {
		card.Missing = true
		if title, ok := requested.Title(); ok {
			if card.Title == "" {
				card.Title = title
			}
			card.URL = e.resolver.PageURL(projectID, title)
		} else {
			id, _ := requested.ID()
			card.PageID = id
			card.URL = e.resolver.PageIDURL(projectID, id)
		}
		return card
	}

	card.URL = e.resolver.PageURL(projectID, info.Title)
	card.Description = info.Description
	if info.Thumbnail != nil {
		thumb := *info.Thumbnail
		card.Thumbnail = &thumb
	}
	return card
}
