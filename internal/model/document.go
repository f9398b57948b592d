// Package model 定义了 MySQL 表结构、Elasticsearch 文档结构与 API 的 DTO。
package model

import "time"

// 文档处理状态。error 状态以 "error: " 为前缀，后接具体原因。
const (
	StatusProcessed   = "processed"
	StatusEmpty       = "empty_or_unparsable"
	StatusErrorPrefix = "error: "
	StatusIndexed     = "indexed"
)

// Document 对应于文档目录库中的 documents 表。
// 每次上传（无论成败）写入一行，作为文档列表的完整目录，
// 避免从向量库的有界元数据扫描中近似重建列表。
type Document struct {
	ID         string    `gorm:"type:varchar(36);primaryKey;column:id"`
	Filename   string    `gorm:"type:varchar(255);not null;column:filename"`
	Status     string    `gorm:"type:varchar(255);not null;column:status"`
	ChunkCount int       `gorm:"not null;default:0;column:chunk_count"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Document) TableName() string {
	return "documents"
}
