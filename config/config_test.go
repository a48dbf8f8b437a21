package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	tmp, err := os.MkdirTemp(os.TempDir(), "test_")
	require.NoError(t, err)

	raw := `log: /var/log/ragmcp.log
doc_root: /srv/docs
index_path: /srv/index/graph.db
write_debounce_ms: 500
chunk_size: 1000
chunk_overlap: 100
request_size: 4000
results: 5
max_neighbors: 3
server_addr: localhost:8989
chroma_addr: http://localhost:8000
open_ai:
  model: text-embedding-3-small
  api_key: sk-test
`
	cfgPath := filepath.Join(tmp, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(raw), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/ragmcp.log", cfg.LogFile)
	assert.Equal(t, "/srv/docs", cfg.DocRoot)
	assert.Equal(t, "/srv/index/graph.db", cfg.IndexPath)
	assert.Equal(t, 500, cfg.MergeEventsMs)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 4000, cfg.RequestSize)
	assert.Equal(t, 5, cfg.Results)
	assert.Equal(t, 3, cfg.MaxNeighbors)
	assert.Equal(t, "localhost:8989", cfg.ServerAddr)
	assert.Equal(t, "http://localhost:8000", cfg.ChromaAddr)
	require.NotNil(t, cfg.OpenAI)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.Model)
	assert.Equal(t, "sk-test", cfg.OpenAI.ApiKey)
	assert.Nil(t, cfg.Gemini)
}

func Test_Load_MissingFile(t *testing.T) {
	_, err := Load("no/such/config.yaml")
	assert.Error(t, err)
}

func Test_Load_BadYaml(t *testing.T) {
	tmp, err := os.MkdirTemp(os.TempDir(), "test_")
	require.NoError(t, err)

	cfgPath := filepath.Join(tmp, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log: [unterminated"), 0o644))

	_, err = Load(cfgPath)
	assert.Error(t, err)
}
