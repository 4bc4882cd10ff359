package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
)

type fakeCall struct {
	endpoint string
	keys     []domain.PageKey
}

// fakeWiki answers page-info queries from memory. Every title exists unless
// listed in missing; ids resolve to "Page <id>" unless listed in missingIDs.
type fakeWiki struct {
	mu         sync.Mutex
	calls      []fakeCall
	redirects  map[string]string
	missing    map[string]bool
	missingIDs map[int64]bool
	fail       map[string]error
	delay      map[string]time.Duration
}

func newFakeWiki() *fakeWiki {
	return &fakeWiki{
		redirects:  map[string]string{},
		missing:    map[string]bool{},
		missingIDs: map[int64]bool{},
		fail:       map[string]error{},
		delay:      map[string]time.Duration{},
	}
}

func (f *fakeWiki) QueryPages(ctx context.Context, endpoint string, keys []domain.PageKey) ([]domain.PageInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{endpoint: endpoint, keys: append([]domain.PageKey(nil), keys...)})
	err := f.fail[endpoint]
	delay := f.delay[endpoint]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.PageInfo, len(keys))
	for i, k := range keys {
		if id, ok := k.ID(); ok {
			if f.missingIDs[id] {
				out[i] = domain.PageInfo{PageID: id, Missing: true}
				continue
			}
			out[i] = fakePage(id, "Page "+strconv.FormatInt(id, 10))
			continue
		}
		title, _ := k.Title()
		if to, ok := f.redirects[title]; ok {
			title = to
		}
		if f.missing[title] {
			out[i] = domain.PageInfo{Title: title, Missing: true}
			continue
		}
		out[i] = fakePage(int64(len(title)), title)
	}
	return out, nil
}

func fakePage(id int64, title string) domain.PageInfo {
	return domain.PageInfo{
		PageID:      id,
		Title:       title,
		Description: "About " + title,
		Thumbnail: &domain.Thumbnail{
			Source: "https://upload.wikimedia.org/" + title + ".jpg",
			Width:  200,
			Height: 150,
		},
	}
}

func (f *fakeWiki) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testResolver() *project.Resolver {
	return project.NewResolver(project.SiteContext{
		Host:        "en.wikipedia.org",
		ScriptPath:  "/w",
		ArticlePath: "/wiki/$1",
	})
}

func newTestAggregator(fw *fakeWiki) *Aggregator {
	resolver := testResolver()
	return NewAggregator(NewBatchFetcher(fw, resolver), NewCardEnricher(resolver), resolver)
}

func titleKeys(n int, prefix string) []domain.PageKey {
	keys := make([]domain.PageKey, n)
	for i := range keys {
		keys[i] = domain.PageTitle(prefix + strconv.Itoa(i))
	}
	return keys
}

const (
	enAPI = "https://en.wikipedia.org/w/api.php"
	frAPI = "https://fr.wikipedia.org/w/api.php"
)
