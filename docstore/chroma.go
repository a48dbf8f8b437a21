package docstore

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

const (
	FilePath = "file_path"
	FileCrc  = "file_crc"
	ChunkID  = "chunk_id"
)

const collectionName = "documents"

type ChromaStoreConfig struct {
	BaseURL       string
	EmbeddingFunc embeddings.EmbeddingFunction
	Results       int
	RequestSize   int
	Reset         bool
}

type ChromaStore struct {
	results     int
	requestSize int
	col         chroma.Collection
}

func NewChromaStore(ctx context.Context, cfg ChromaStoreConfig) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	col, err := client.GetOrCreateCollection(ctx, collectionName,
		chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc))
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", collectionName, err)
	}

	if cfg.Reset {
		if err := client.DeleteCollection(ctx, collectionName); err != nil {
			return nil, fmt.Errorf("failed to delete collection %s: %w", collectionName, err)
		}

		col, err = client.GetOrCreateCollection(ctx, collectionName,
			chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc))
		if err != nil {
			return nil, fmt.Errorf("failed to recreate collection %s: %w", collectionName, err)
		}
	}

	return &ChromaStore{
		results:     cfg.Results,
		requestSize: cfg.RequestSize,
		col:         col,
	}, nil
}

func (ds *ChromaStore) Injest(ctx context.Context, doc Doc) error {
	for _, batch := range splitRequests(doc.Chunks, ds.requestSize) {
		texts := make([]string, 0, len(batch))
		metas := make([]chroma.DocumentMetadata, 0, len(batch))
		for _, c := range batch {
			texts = append(texts, c.Text)
			metas = append(metas, chunkMetadata(doc, c))
		}

		err := ds.col.Add(ctx,
			chroma.WithTexts(texts...),
			chroma.WithIDGenerator(chroma.NewULIDGenerator()),
			chroma.WithMetadatas(metas...),
		)
		if err != nil {
			return fmt.Errorf("failed to injest doc %s: %w", doc.File, err)
		}
	}

	return nil
}

func (ds *ChromaStore) Retrieve(ctx context.Context, query string) ([]SearchResult, error) {
	r, err := ds.col.Query(ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(ds.results),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve texts: %w", err)
	}

	res := make([]SearchResult, 0, ds.results)
	docs := r.GetDocumentsGroups()[0]
	metadatas := r.GetMetadatasGroups()[0]
	scores := r.GetDistancesGroups()[0]
	for i := range len(docs) {
		file, _ := metadatas[i].GetString(FilePath)
		chunkID, _ := metadatas[i].GetString(ChunkID)
		res = append(res, SearchResult{
			Text:    docs[i].ContentString(),
			File:    file,
			ChunkID: chunkID,
			Score:   float32(scores[i]),
		})
	}

	return res, nil
}

func (ds *ChromaStore) Forget(ctx context.Context, doc InjestedDoc) error {
	err := ds.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(FilePath, doc.File)))
	if err != nil {
		return fmt.Errorf("failed to forget doc %s: %w", doc.File, err)
	}

	return nil
}

func (ds *ChromaStore) GetInjested(ctx context.Context) ([]InjestedDoc, error) {
	res, err := ds.col.Get(ctx)
	if err != nil {
		return nil, err
	}

	var docs []InjestedDoc
	seen := make(map[InjestedDoc]struct{})

	// chroma hands numbers back as floats
	for _, meta := range res.GetMetadatas() {
		path, _ := meta.GetString(FilePath)
		crc, _ := meta.GetFloat(FileCrc)
		doc := InjestedDoc{
			File: path,
			Crc:  uint32(crc),
		}

		if _, ok := seen[doc]; ok {
			continue
		}

		seen[doc] = struct{}{}
		docs = append(docs, doc)
	}

	return docs, nil
}

func chunkMetadata(doc Doc, c Chunk) chroma.DocumentMetadata {
	return chroma.NewDocumentMetadata(
		chroma.NewStringAttribute(FilePath, doc.File),
		chroma.NewIntAttribute(FileCrc, int64(doc.Crc)),
		chroma.NewStringAttribute(ChunkID, c.ID),
	)
}

// splitRequests packs chunks into requests so the summed text length stays
// within budget characters per request. A single chunk over the budget still
// gets its own request. Budget <= 0 disables splitting.
func splitRequests(chunks []Chunk, budget int) [][]Chunk {
	if len(chunks) == 0 {
		return nil
	}

	if budget <= 0 {
		return [][]Chunk{chunks}
	}

	var batches [][]Chunk
	var batch []Chunk
	size := 0
	for _, c := range chunks {
		if len(batch) > 0 && size+len(c.Text) > budget {
			batches = append(batches, batch)
			batch = nil
			size = 0
		}

		batch = append(batch, c)
		size += len(c.Text)
	}

	return append(batches, batch)
}
