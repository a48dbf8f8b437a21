package docstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SplitRequests(t *testing.T) {
	chunks := func(texts ...string) []Chunk {
		cs := make([]Chunk, 0, len(texts))
		for i, text := range texts {
			cs = append(cs, Chunk{ID: fmt.Sprintf("c%d", i), Text: text})
		}

		return cs
	}

	var cases = []struct {
		chunks  []Chunk
		budget  int
		batches int
	}{
		{chunks: chunks("Bananas", "are", "berries", "but", "strawberries", "aren't"), budget: 13, batches: 4},
		{chunks: chunks("Bananas", "are", "berries"), budget: 0, batches: 1},
		{chunks: chunks("a chunk far over the budget"), budget: 5, batches: 1},
		{chunks: chunks("aa", "bb", "cc"), budget: 2, batches: 3},
		{chunks: chunks("aa", "bb", "cc"), budget: 4, batches: 2},
		{chunks: nil, budget: 10, batches: 0},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			batches := splitRequests(c.chunks, c.budget)
			assert.Len(t, batches, c.batches)

			var flat []Chunk
			for _, b := range batches {
				require.NotEmpty(t, b)
				flat = append(flat, b...)
			}
			assert.Equal(t, c.chunks, flat)
		})
	}
}

func Test_ChunkMetadata(t *testing.T) {
	doc := Doc{File: "facts.pdf", Crc: 12345}
	meta := chunkMetadata(doc, Chunk{ID: "chunk-1", Text: "Bananas are berries."})

	file, ok := meta.GetString(FilePath)
	require.True(t, ok)
	assert.Equal(t, "facts.pdf", file)

	crc, ok := meta.GetInt(FileCrc)
	require.True(t, ok)
	assert.Equal(t, int64(12345), crc)

	id, ok := meta.GetString(ChunkID)
	require.True(t, ok)
	assert.Equal(t, "chunk-1", id)
}
