package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gamma-omg/graphrag-mcp/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_clearCache(t *testing.T) {
	tmp, err := os.MkdirTemp(os.TempDir(), "test_")
	require.NoError(t, err)

	indexPath := filepath.Join(tmp, "index.db")
	cfgPath := filepath.Join(tmp, "config.yaml")
	cfgYaml := fmt.Sprintf("log: %s\nindex_path: %s\n", filepath.Join(tmp, "log.json"), indexPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYaml), 0o644))

	idx, err := graph.Open(indexPath)
	require.NoError(t, err)

	nodes := []graph.Node{
		{ID: "n1", File: "f.txt", Text: "bananas are berries", Terms: []string{"banana", "berri"}},
		{ID: "n2", File: "f.txt", Text: "strawberries are not", Terms: []string{"berri"}},
	}
	require.NoError(t, idx.AddDoc("f.txt", nodes))
	require.NoError(t, idx.CachePut(graph.CacheKey("berries"), []byte(`{"results":[]}`)))
	require.NoError(t, idx.Close())

	var out bytes.Buffer
	clearCache(&out, cfgPath)

	expected := "Clearing retriever cache...\n" +
		"✓ Retriever cache cleared successfully\n" +
		"Cached query results will be rebuilt on the next retrieval.\n"
	assert.Equal(t, expected, out.String())

	idx, err = graph.Open(indexPath)
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.CacheGet(graph.CacheKey("berries"))
	assert.ErrorIs(t, err, graph.ErrCacheMiss)

	neighbors, err := idx.Neighbors("n1", 10)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "n2", neighbors[0].ID)
}

func Test_clearCache_BadConfig(t *testing.T) {
	var out bytes.Buffer
	assert.Panics(t, func() {
		clearCache(&out, filepath.Join(os.TempDir(), "does-not-exist.yaml"))
	})
	assert.Equal(t, "Clearing retriever cache...\n", out.String())
}
