// Package pipeline 定义了单个文档的摄取流程：切分、向量化、写入向量库。
package pipeline

import (
	"context"
	"fmt"

	"rag-system-go/internal/loader"
	"rag-system-go/internal/model"
	"rag-system-go/pkg/embedding"
	"rag-system-go/pkg/log"
)

// ChunkIndexer 是 Processor 对向量库的最小依赖。
type ChunkIndexer interface {
	IndexChunks(ctx context.Context, chunks []model.ChunkDocument) error
}

// Processor 封装了文档摄取的依赖和逻辑。
type Processor struct {
	splitter        *Splitter
	embeddingClient embedding.Client
	indexer         ChunkIndexer
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(embeddingClient embedding.Client, indexer ChunkIndexer, chunkSize, chunkOverlap int) *Processor {
	return &Processor{
		splitter:        NewSplitter(chunkSize, chunkOverlap),
		embeddingClient: embeddingClient,
		indexer:         indexer,
	}
}

// Process 处理一个已提取文本的文档：为每个文本单元打上文档标识，
// 切分为重叠分块，批量向量化后写入向量库。
// 返回写入的分块数；0 表示文档为空或不可解析（不视为错误）。
func (p *Processor) Process(ctx context.Context, documentID, filename string, pages []loader.Page) (int, error) {
	log.Infof("[Processor] 开始处理文档, ID: %s, 文件名: %s, 文本单元: %d", documentID, filename, len(pages))

	// 1. 逐单元切分并附加来源元数据
	var chunks []model.ChunkDocument
	for _, page := range pages {
		pieces := p.splitter.Split(page.Text)
		for i, piece := range pieces {
			chunks = append(chunks, model.ChunkDocument{
				SourceDocumentID: documentID,
				Filename:         filename,
				Page:             page.Number,
				ChunkIndex:       i,
				TextContent:      piece,
				ModelVersion:     embedding.ModelName,
			})
		}
	}
	log.Infof("[Processor] 文本分块完成, 共生成 %d 个分块", len(chunks))
	if len(chunks) == 0 {
		return 0, nil
	}

	// 2. 批量向量化
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.TextContent
	}
	vectors, err := p.embeddingClient.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("分块向量化失败: %w", err)
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	// 3. 写入向量库
	if err := p.indexer.IndexChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("索引分块到向量库失败: %w", err)
	}

	log.Infof("[Processor] 文档处理成功, ID: %s, 已索引 %d 个分块", documentID, len(chunks))
	return len(chunks), nil
}
