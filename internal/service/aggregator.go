package service

import (
	"context"
	"time"

	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
	"golang.org/x/sync/errgroup"
)

// AggregateOptions controls the order of aggregated cards.
type AggregateOptions struct {
	// GroupByProject orders cards by project (first appearance) instead of input order.
	GroupByProject bool
}

// Aggregator resolves page refs spread across many wikis into cards.
type Aggregator struct {
	fetcher  *BatchFetcher
	enricher *CardEnricher
	resolver *project.Resolver
}

// NewAggregator creates a new aggregator.
// Parameters:
//   - fetcher: per-project chunked page-info fetcher.
//   - enricher: maps page info to cards.
//   - resolver: canonicalizes project identifiers for grouping.
// Returns:
//   - *Aggregator: initialized aggregator.
func NewAggregator(fetcher *BatchFetcher, enricher *CardEnricher, resolver *project.Resolver) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		enricher: enricher,
		resolver: resolver,
	}
}

// keyBatch is the set of distinct keys of one kind for one project.
type keyBatch struct {
	keys  []domain.PageKey
	infos []domain.PageInfo
}

// projectGroup collects the refs of one project.
type projectGroup struct {
	origin string
	ids    keyBatch
	titles keyBatch
	seen   map[domain.PageKey]struct{}
}

func (g *projectGroup) add(key domain.PageKey) {
	if _, ok := g.seen[key]; ok {
		return
	}
	g.seen[key] = struct{}{}
	if key.Kind() == domain.KeyKindID {
		g.ids.keys = append(g.ids.keys, key)
	} else {
		g.titles.keys = append(g.titles.keys, key)
	}
}

// Aggregate returns one card per ref. Cards come back in the order of refs,
// or grouped by project when opts.GroupByProject is set. Any project failure
// fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, refs []domain.PageRef, opts AggregateOptions) ([]domain.Card, error) {
	if len(refs) == 0 {
		return []domain.Card{}, nil
	}
	start := time.Now()
	ctx = logger.SetComponent(ctx, "aggregator")

	groups, groupOf := a.groupRefs(refs)

	// Check every project before the first request goes out.
	for _, g := range groups {
		if err := a.fetcher.checkLimit(g.origin, len(g.seen)); err != nil {
			return nil, err
		}
	}

	eg, gctx := errgroup.WithContext(ctx)
	for _, g := range groups {
		g := g
		for _, batch := range []*keyBatch{&g.ids, &g.titles} {
			batch := batch
			if len(batch.keys) == 0 {
				continue
			}
			eg.Go(func() error {
				infos, err := a.fetcher.FetchInfo(gctx, g.origin, batch.keys)
				if err != nil {
					return err
				}
				batch.infos = infos
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		logger.With(logger.Fields{"projects": len(groups)}).
			WithCount(len(refs)).
			Error(ctx, "Aggregation failed: %v", err)
		return nil, err
	}

	cardsByGroup := make([]map[domain.PageKey]domain.Card, len(groups))
	for i, g := range groups {
		cards := make(map[domain.PageKey]domain.Card, len(g.seen))
		for _, batch := range []*keyBatch{&g.ids, &g.titles} {
			for j, key := range batch.keys {
				cards[key] = a.enricher.ToCard(batch.infos[j], key, g.origin)
			}
		}
		cardsByGroup[i] = cards
	}

	out := make([]domain.Card, len(refs))
	for i, ref := range refs {
		card := cardsByGroup[groupOf[i]][ref.Key]
		card.EntryID = ref.EntryID
		out[i] = card
	}

	if opts.GroupByProject {
		out = orderByGroup(out, groupOf, len(groups))
	}

	logger.With(logger.Fields{"projects": len(groups)}).
		WithCount(len(refs)).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Aggregated %d cards across %d projects", len(out), len(groups))

	return out, nil
}

// groupRefs groups refs by canonical origin in first-appearance order and
// returns, for every ref, the index of its group.
func (a *Aggregator) groupRefs(refs []domain.PageRef) ([]*projectGroup, []int) {
	var groups []*projectGroup
	index := make(map[string]int)
	groupOf := make([]int, len(refs))

	for i, ref := range refs {
		origin := a.resolver.ResolveOrigin(ref.Project)
		gi, ok := index[origin]
		if !ok {
			gi = len(groups)
			index[origin] = gi
			groups = append(groups, &projectGroup{
				origin: origin,
				seen:   make(map[domain.PageKey]struct{}),
			})
		}
		groups[gi].add(ref.Key)
		groupOf[i] = gi
	}
	return groups, groupOf
}

// orderByGroup is a stable partition of cards by group index.
func orderByGroup(cards []domain.Card, groupOf []int, n int) []domain.Card {
	buckets := make([][]domain.Card, n)
	for i, c := range cards {
		buckets[groupOf[i]] = append(buckets[groupOf[i]], c)
	}
	out := make([]domain.Card, 0, len(cards))
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}
