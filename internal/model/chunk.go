package model

// ChunkDocument 定义了存储在 Elasticsearch 中的分块结构。
// 分块的 _id 由 Elasticsearch 自动分配，应用侧不生成分块标识。
type ChunkDocument struct {
	SourceDocumentID string    `json:"source_document_id"`
	Filename         string    `json:"filename"`
	Page             int       `json:"page"`
	ChunkIndex       int       `json:"chunk_index"`
	TextContent      string    `json:"text_content"`
	Vector           []float32 `json:"vector"`
	ModelVersion     string    `json:"model_version"`
}

// RetrievedChunk 是一次检索（或按文档取块）返回的分块。
// ID 为 Elasticsearch 分配的 _id；Score 为余弦距离，越小越相关。
type RetrievedChunk struct {
	ID    string
	Chunk ChunkDocument
	Score float64
}
