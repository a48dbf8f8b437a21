package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamma-omg/graphrag-mcp/docstore"
	"github.com/gamma-omg/graphrag-mcp/graph"
)

type searchStore interface {
	Retrieve(ctx context.Context, query string) ([]docstore.SearchResult, error)
}

type graphIndex interface {
	Neighbors(id string, max int) ([]graph.Node, error)
	CacheGet(key string) ([]byte, error)
	CachePut(key string, val []byte) error
}

// Retriever answers queries from the vector store, pulls in graph neighbors
// of the hits and caches the combined result. Cache failures degrade to a
// regular retrieval.
type Retriever struct {
	log          *slog.Logger
	store        searchStore
	graph        graphIndex
	maxNeighbors int
}

type cachedResults struct {
	Results  []docstore.SearchResult `json:"results"`
	CachedAt time.Time               `json:"cached_at"`
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]docstore.SearchResult, error) {
	key := graph.CacheKey(query)
	if results, ok := r.fromCache(key); ok {
		return results, nil
	}

	results, err := r.store.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve documents: %w", err)
	}

	results = r.expand(results)
	r.toCache(key, results)

	return results, nil
}

// expand appends neighbors of every hit. A neighbor inherits the score of
// the hit that pulled it in and is never added twice.
func (r *Retriever) expand(results []docstore.SearchResult) []docstore.SearchResult {
	if r.maxNeighbors <= 0 {
		return results
	}

	seen := make(map[string]bool, len(results))
	for _, hit := range results {
		seen[hit.ChunkID] = true
	}

	expanded := results
	for _, hit := range results {
		neighbors, err := r.graph.Neighbors(hit.ChunkID, r.maxNeighbors)
		if err != nil {
			r.log.Warn(fmt.Sprintf("failed to expand %s: %s", hit.ChunkID, err))
			continue
		}

		for _, n := range neighbors {
			if seen[n.ID] {
				continue
			}

			seen[n.ID] = true
			expanded = append(expanded, docstore.SearchResult{
				Text:    n.Text,
				File:    n.File,
				ChunkID: n.ID,
				Score:   hit.Score,
			})
		}
	}

	return expanded
}

func (r *Retriever) fromCache(key string) ([]docstore.SearchResult, bool) {
	raw, err := r.graph.CacheGet(key)
	if err != nil {
		if !errors.Is(err, graph.ErrCacheMiss) {
			r.log.Warn(fmt.Sprintf("failed to read retriever cache: %s", err))
		}

		return nil, false
	}

	var cached cachedResults
	if err := json.Unmarshal(raw, &cached); err != nil {
		r.log.Warn(fmt.Sprintf("failed to decode cached results: %s", err))
		return nil, false
	}

	return cached.Results, true
}

func (r *Retriever) toCache(key string, results []docstore.SearchResult) {
	raw, err := json.Marshal(cachedResults{
		Results:  results,
		CachedAt: time.Now().UTC(),
	})
	if err != nil {
		r.log.Warn(fmt.Sprintf("failed to encode results for caching: %s", err))
		return
	}

	if err := r.graph.CachePut(key, raw); err != nil {
		r.log.Warn(fmt.Sprintf("failed to cache results: %s", err))
	}
}
