package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/codec"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
)

// ListStore persists reading lists and their entries.
type ListStore interface {
	Create(ctx context.Context, list *domain.ReadingList) error
	GetByID(ctx context.Context, id uint) (*domain.ReadingList, error)
	ListEntries(ctx context.Context, listID uint) ([]domain.ReadingListEntry, error)
	AddEntry(ctx context.Context, entry *domain.ReadingListEntry) error
	DeleteEntry(ctx context.Context, listID, entryID uint) error
}

// SharedList is an imported token rendered as cards.
type SharedList struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Cards       []domain.Card `json:"cards"`
}

// ListService ties stored lists to aggregation and to the share codec.
type ListService struct {
	store      ListStore
	aggregator *Aggregator
	codec      *codec.Codec
}

// NewListService creates a new list service.
func NewListService(store ListStore, aggregator *Aggregator, c *codec.Codec) *ListService {
	return &ListService{
		store:      store,
		aggregator: aggregator,
		codec:      c,
	}
}

// CreateList stores a new, empty list.
func (s *ListService) CreateList(ctx context.Context, name, description string) (*domain.ReadingList, error) {
	list := &domain.ReadingList{Name: name, Description: description}
	if err := s.store.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	logger.CtxInfo(ctx, "Created list %d", list.ID)
	return list, nil
}

// GetList returns a stored list.
func (s *ListService) GetList(ctx context.Context, id uint) (*domain.ReadingList, error) {
	return s.store.GetByID(ctx, id)
}

// AddEntry saves a page to a list.
func (s *ListService) AddEntry(ctx context.Context, listID uint, projectID string, key domain.PageKey) (*domain.ReadingListEntry, error) {
	entry := &domain.ReadingListEntry{ListID: listID, Project: projectID}
	if title, ok := key.Title(); ok {
		entry.Title = title
	} else {
		entry.PageID, _ = key.ID()
	}
	if err := s.store.AddEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RemoveEntry deletes an entry from a list.
func (s *ListService) RemoveEntry(ctx context.Context, listID, entryID uint) error {
	return s.store.DeleteEntry(ctx, listID, entryID)
}

// Cards aggregates the entries of a stored list. Card ids are entry row ids.
func (s *ListService) Cards(ctx context.Context, listID uint, opts AggregateOptions) ([]domain.Card, error) {
	ctx = logger.WithField(ctx, logger.FieldListID, listID)

	entries, err := s.store.ListEntries(ctx, listID)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.PageRef, len(entries))
	for i, e := range entries {
		refs[i] = e.Ref()
	}
	return s.aggregator.Aggregate(ctx, refs, opts)
}

// Export encodes a stored list as a share token.
func (s *ListService) Export(ctx context.Context, listID uint) (string, error) {
	list, err := s.store.GetByID(ctx, listID)
	if err != nil {
		return "", err
	}
	entries, err := s.store.ListEntries(ctx, listID)
	if err != nil {
		return "", err
	}

	titles := make(map[string][]domain.PageKey)
	for _, e := range entries {
		titles[e.Project] = append(titles[e.Project], e.Key())
	}
	return s.codec.Encode(list.Name, list.Description, titles)
}

// Encode builds a share token without touching storage.
func (s *ListService) Encode(name, description string, titlesByProject map[string][]domain.PageKey) (string, error) {
	return s.codec.Encode(name, description, titlesByProject)
}

// Import decodes a token and stores it as a new list.
func (s *ListService) Import(ctx context.Context, token string) (*domain.ReadingList, error) {
	doc, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	list := &domain.ReadingList{Name: doc.Name, Description: doc.Description}
	for _, ref := range tokenRefs(doc) {
		entry := domain.ReadingListEntry{Project: ref.Project}
		if title, ok := ref.Key.Title(); ok {
			entry.Title = title
		} else {
			entry.PageID, _ = ref.Key.ID()
		}
		list.Entries = append(list.Entries, entry)
	}

	if err := s.store.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to import list: %w", err)
	}
	logger.With(logger.Fields{
		logger.FieldListID: list.ID,
		logger.FieldCount:  len(list.Entries),
	}).Info(ctx, "Imported shared list %q", list.Name)
	return list, nil
}

// RenderToken decodes a token and aggregates its pages without storing anything.
// Card ids are positions in the decoded list.
func (s *ListService) RenderToken(ctx context.Context, token string, opts AggregateOptions) (*SharedList, error) {
	doc, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	cards, err := s.aggregator.Aggregate(ctx, tokenRefs(doc), opts)
	if err != nil {
		return nil, err
	}
	return &SharedList{
		Name:        doc.Name,
		Description: doc.Description,
		Cards:       cards,
	}, nil
}

// tokenRefs flattens a decoded token into refs, projects in sorted order.
func tokenRefs(doc *domain.CollectionToken) []domain.PageRef {
	projects := make([]string, 0, len(doc.TitlesByProject))
	for p := range doc.TitlesByProject {
		projects = append(projects, p)
	}
	sort.Strings(projects)

	var refs []domain.PageRef
	for _, p := range projects {
		for _, key := range doc.TitlesByProject[p] {
			refs = append(refs, domain.PageRef{
				EntryID: strconv.Itoa(len(refs)),
				Project: p,
				Key:     key,
			})
		}
	}
	return refs
}
