// Package events defines the structure of document lifecycle events
// published to Kafka.
package events

import "time"

// Event types for the document lifecycle topic.
const (
	TypeDocumentIngested = "document_ingested"
	TypeDocumentDeleted  = "document_deleted"
)

// DocumentEvent 是文档摄取/删除后发布的审计事件。
type DocumentEvent struct {
	Type       string    `json:"type"`
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	Timestamp  time.Time `json:"timestamp"`
}
