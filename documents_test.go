package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildChunks(t *testing.T) {
	parts := []string{"Bananas are berries", "strawberries are not berries"}

	chunks, nodes := buildChunks("facts.txt", 12345, parts)
	require.Len(t, chunks, 2)
	require.Len(t, nodes, 2)

	for i := range chunks {
		assert.Equal(t, chunks[i].ID, nodes[i].ID)
		assert.Equal(t, parts[i], chunks[i].Text)
		assert.Equal(t, parts[i], nodes[i].Text)
		assert.Equal(t, "facts.txt", nodes[i].File)
		assert.NotEmpty(t, nodes[i].Terms)
	}

	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
}

func Test_buildChunks_DeterministicIDs(t *testing.T) {
	parts := []string{"Bananas are berries"}

	first, _ := buildChunks("facts.txt", 12345, parts)
	second, _ := buildChunks("facts.txt", 12345, parts)
	assert.Equal(t, first[0].ID, second[0].ID)

	changed, _ := buildChunks("facts.txt", 54321, parts)
	assert.NotEqual(t, first[0].ID, changed[0].ID)

	moved, _ := buildChunks("other.txt", 12345, parts)
	assert.NotEqual(t, first[0].ID, moved[0].ID)
}
