package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/wiki"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxChunkSize is the most keys sent to a remote API in one request.
	MaxChunkSize = 50
	// MaxKeysPerProject is the most keys one project may be asked for in one call.
	MaxKeysPerProject = 250
)

// BatchFetcher fetches page info for one project in API-sized chunks.
type BatchFetcher struct {
	querier   wiki.PageInfoQuerier
	resolver  *project.Resolver
	chunkSize int
	maxKeys   int
}

// NewBatchFetcher creates a fetcher that sends its requests through querier.
// Parameters:
//   - querier: remote page-info capability.
//   - resolver: maps project identifiers to API endpoints.
// Returns:
//   - *BatchFetcher: fetcher using MaxChunkSize and MaxKeysPerProject.
func NewBatchFetcher(querier wiki.PageInfoQuerier, resolver *project.Resolver) *BatchFetcher {
	return &BatchFetcher{
		querier:   querier,
		resolver:  resolver,
		chunkSize: MaxChunkSize,
		maxKeys:   MaxKeysPerProject,
	}
}

// FetchInfo returns one PageInfo per key, in key order. Keys must all be of
// one kind. Chunks are fetched concurrently; the first failure is returned
// and no partial result is produced.
func (f *BatchFetcher) FetchInfo(ctx context.Context, projectID string, keys []domain.PageKey) ([]domain.PageInfo, error) {
	if err := f.checkLimit(projectID, len(keys)); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []domain.PageInfo{}, nil
	}

	start := time.Now()
	ctx = logger.SetProject(ctx, projectID)
	endpoint := f.resolver.ResolveAPIEndpoint(projectID)
	bounds := chunkBounds(len(keys), f.chunkSize)
	results := make([][]domain.PageInfo, len(bounds))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range bounds {
		i, b := i, b
		g.Go(func() error {
			infos, err := f.querier.QueryPages(gctx, endpoint, keys[b.start:b.end])
			if err != nil {
				return err
			}
			if len(infos) != b.end-b.start {
				return &domain.TransportError{
					Endpoint: endpoint,
					Err:      fmt.Errorf("got %d page records for %d keys", len(infos), b.end-b.start),
				}
			}
			results[i] = infos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.With(logger.Fields{"endpoint": endpoint}).
			WithCount(len(keys)).
			Warn(ctx, "Page info fetch failed: %v", err)
		return nil, err
	}

	out := make([]domain.PageInfo, 0, len(keys))
	for _, r := range results {
		out = append(out, r...)
	}

	logger.With(logger.Fields{logger.FieldChunks: len(bounds)}).
		WithCount(len(keys)).
		WithDuration(time.Since(start).Milliseconds()).
		Debug(ctx, "Fetched page info")

	return out, nil
}

func (f *BatchFetcher) checkLimit(projectID string, n int) error {
	if n > f.maxKeys {
		return &domain.SizeLimitError{Project: projectID, Count: n, Limit: f.maxKeys}
	}
	return nil
}

type chunk struct {
	start, end int
}

// chunkBounds splits [0,n) into contiguous ranges of at most size elements.
func chunkBounds(n, size int) []chunk {
	if n <= 0 || size <= 0 {
		return nil
	}
	bounds := make([]chunk, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		bounds = append(bounds, chunk{start: start, end: end})
	}
	return bounds
}
