package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	bolt "go.etcd.io/bbolt"
)

var (
	nodesBucket = []byte("nodes")
	termsBucket = []byte("terms")
	cacheBucket = []byte("retriever_cache")
)

var ErrCacheMiss = errors.New("cache miss")

// Node is a single document chunk with the stemmed terms it was indexed
// under. Nodes sharing terms are considered neighbors.
type Node struct {
	ID    string   `json:"id"`
	File  string   `json:"file"`
	Text  string   `json:"text"`
	Terms []string `json:"terms"`
}

// Index relates document chunks through shared vocabulary and holds the
// retriever cache. Everything lives in a single bbolt file.
type Index struct {
	db *bolt.DB
}

func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{nodesBucket, termsBucket, cacheBucket} {
			if _, e := tx.CreateBucketIfNotExists(name); e != nil {
				return e
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index buckets: %w", err)
	}

	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) AddDoc(file string, nodes []Node) error {
	err := ix.db.Update(func(tx *bolt.Tx) error {
		nb := tx.Bucket(nodesBucket)
		tb := tx.Bucket(termsBucket)

		for _, n := range nodes {
			raw, err := json.Marshal(n)
			if err != nil {
				return err
			}

			if err := nb.Put([]byte(n.ID), raw); err != nil {
				return err
			}

			for _, term := range n.Terms {
				if err := addPosting(tb, term, n.ID); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index document %s: %w", file, err)
	}

	return nil
}

func (ix *Index) RemoveDoc(file string) error {
	err := ix.db.Update(func(tx *bolt.Tx) error {
		nb := tx.Bucket(nodesBucket)
		tb := tx.Bucket(termsBucket)

		// collect first: mutating a bucket inside ForEach is not allowed
		var removed []Node
		err := nb.ForEach(func(k, v []byte) error {
			var n Node
			if e := json.Unmarshal(v, &n); e != nil {
				return e
			}

			if n.File == file {
				removed = append(removed, n)
			}

			return nil
		})
		if err != nil {
			return err
		}

		for _, n := range removed {
			if e := nb.Delete([]byte(n.ID)); e != nil {
				return e
			}

			for _, term := range n.Terms {
				if e := removePosting(tb, term, n.ID); e != nil {
					return e
				}
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove document %s from index: %w", file, err)
	}

	return nil
}

// Neighbors returns up to max nodes sharing at least one term with the given
// node, most shared terms first. An unknown id yields an empty result.
func (ix *Index) Neighbors(id string, max int) ([]Node, error) {
	var neighbors []Node
	err := ix.db.View(func(tx *bolt.Tx) error {
		nb := tx.Bucket(nodesBucket)
		tb := tx.Bucket(termsBucket)

		raw := nb.Get([]byte(id))
		if raw == nil {
			return nil
		}

		var node Node
		if err := json.Unmarshal(raw, &node); err != nil {
			return err
		}

		shared := make(map[string]int)
		for _, term := range node.Terms {
			ids, err := readPosting(tb, term)
			if err != nil {
				return err
			}

			for _, other := range ids {
				if other != id {
					shared[other]++
				}
			}
		}

		ranked := make([]string, 0, len(shared))
		for other := range shared {
			ranked = append(ranked, other)
		}
		slices.SortFunc(ranked, func(a, b string) int {
			if shared[a] != shared[b] {
				return shared[b] - shared[a]
			}

			return strings.Compare(a, b)
		})

		if max >= 0 && len(ranked) > max {
			ranked = ranked[:max]
		}

		for _, other := range ranked {
			nraw := nb.Get([]byte(other))
			if nraw == nil {
				continue
			}

			var n Node
			if err := json.Unmarshal(nraw, &n); err != nil {
				return err
			}

			neighbors = append(neighbors, n)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect neighbors of %s: %w", id, err)
	}

	return neighbors, nil
}

// CacheKey derives the retriever cache key for a query.
func CacheKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:16])
}

func (ix *Index) CacheGet(key string) ([]byte, error) {
	var val []byte
	err := ix.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(cacheBucket).Get([]byte(key))
		if raw == nil {
			return ErrCacheMiss
		}

		// bbolt values are only valid inside the transaction
		val = slices.Clone(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return val, nil
}

func (ix *Index) CachePut(key string, val []byte) error {
	err := ix.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(key), val)
	})
	if err != nil {
		return fmt.Errorf("failed to cache results: %w", err)
	}

	return nil
}

// ClearRetrieverCache drops every cached retrieval result. Nodes and terms
// are left untouched.
func (ix *Index) ClearRetrieverCache() error {
	err := ix.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(cacheBucket); err != nil {
			return err
		}

		_, err := tx.CreateBucket(cacheBucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear retriever cache: %w", err)
	}

	return nil
}

// Reset wipes the whole index.
func (ix *Index) Reset() error {
	err := ix.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{nodesBucket, termsBucket, cacheBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}

			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}

	return nil
}

func addPosting(b *bolt.Bucket, term string, id string) error {
	ids, err := readPosting(b, term)
	if err != nil {
		return err
	}

	if slices.Contains(ids, id) {
		return nil
	}

	ids = append(ids, id)
	slices.Sort(ids)
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	return b.Put([]byte(term), raw)
}

func removePosting(b *bolt.Bucket, term string, id string) error {
	ids, err := readPosting(b, term)
	if err != nil {
		return err
	}

	ids = slices.DeleteFunc(ids, func(other string) bool { return other == id })
	if len(ids) == 0 {
		return b.Delete([]byte(term))
	}

	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	return b.Put([]byte(term), raw)
}

func readPosting(b *bolt.Bucket, term string) ([]string, error) {
	raw := b.Get([]byte(term))
	if raw == nil {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}

	return ids, nil
}
