package docstore

type Chunk struct {
	ID   string
	Text string
}

type Doc struct {
	File   string
	Crc    uint32
	Chunks []Chunk
}

type SearchResult struct {
	Text    string
	File    string
	ChunkID string
	Score   float32
}

type InjestedDoc struct {
	File string
	Crc  uint32
}
