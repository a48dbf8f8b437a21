package main

import (
	"fmt"

	"github.com/gamma-omg/graphrag-mcp/docstore"
	"github.com/gamma-omg/graphrag-mcp/graph"
	"github.com/google/uuid"
)

// chunkTerms caps how many stemmed keywords a chunk contributes to the graph.
const chunkTerms = 8

type DiskDoc struct {
	File string
	Crc  uint32
}

type diskDocs map[string]DiskDoc
type dbDocs map[string]docstore.InjestedDoc

// buildChunks derives the store chunks and graph nodes of a document. Chunk
// IDs are content addressed, so injesting identical content again yields the
// same IDs.
func buildChunks(file string, crc uint32, parts []string) ([]docstore.Chunk, []graph.Node) {
	chunks := make([]docstore.Chunk, 0, len(parts))
	nodes := make([]graph.Node, 0, len(parts))

	for i, text := range parts {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s|%d|%d", file, crc, i))).String()
		chunks = append(chunks, docstore.Chunk{ID: id, Text: text})
		nodes = append(nodes, graph.Node{
			ID:    id,
			File:  file,
			Text:  text,
			Terms: graph.Terms(text, chunkTerms),
		})
	}

	return chunks, nodes
}
