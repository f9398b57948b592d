// Package service 包含了文档管理与检索问答的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rag-system-go/internal/loader"
	"rag-system-go/internal/model"
	"rag-system-go/internal/pipeline"
	"rag-system-go/internal/repository"
	"rag-system-go/pkg/events"
	"rag-system-go/pkg/kafka"
	"rag-system-go/pkg/log"
)

// ErrDocumentNotFound 表示向量库中不存在指定文档的任何分块。
var ErrDocumentNotFound = errors.New("document not found")

// VectorStore 是服务层对向量库的依赖。由 pkg/es 的 Store 实现。
type VectorStore interface {
	SearchSimilar(ctx context.Context, vector []float32, topK int) ([]model.RetrievedChunk, error)
	ChunksByDocumentID(ctx context.Context, documentID string) ([]model.RetrievedChunk, error)
	CountByDocumentID(ctx context.Context, documentID string) (int, error)
	DeleteByDocumentID(ctx context.Context, documentID string) (int, error)
}

// DocumentService 定义了文档的摄取、列表、详情与删除操作。
type DocumentService interface {
	IngestFiles(ctx context.Context, files []*multipart.FileHeader) []model.DocumentCreateResponse
	List(ctx context.Context, limit, offset int) (*model.DocumentListResponse, error)
	Get(ctx context.Context, documentID string) (*model.DocumentSummary, error)
	Delete(ctx context.Context, documentID string) (int, error)
}

type documentService struct {
	processor *pipeline.Processor
	store     VectorStore
	docRepo   repository.DocumentRepository
	producer  *kafka.Producer
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(
	processor *pipeline.Processor,
	store VectorStore,
	docRepo repository.DocumentRepository,
	producer *kafka.Producer,
) DocumentService {
	return &documentService{
		processor: processor,
		store:     store,
		docRepo:   docRepo,
		producer:  producer,
	}
}

// IngestFiles 逐个处理上传的文件并返回每个文件的处理状态。
// 单个文件的失败只记录为该文件的错误状态，不中断整批处理。
func (s *documentService) IngestFiles(ctx context.Context, files []*multipart.FileHeader) []model.DocumentCreateResponse {
	responses := make([]model.DocumentCreateResponse, 0, len(files))
	for _, fh := range files {
		responses = append(responses, s.ingestOne(ctx, fh))
	}
	return responses
}

// ingestOne 处理单个文件并无条件记录这次上传尝试：
// 目录里每次上传都有一行，失败的上传以 error 状态留档。
func (s *documentService) ingestOne(ctx context.Context, fh *multipart.FileHeader) model.DocumentCreateResponse {
	documentID := uuid.NewString()
	contentType := fh.Header.Get("Content-Type")
	log.Infof("[DocumentService] 开始摄取文件, ID: %s, 文件名: %s, Content-Type: %s",
		documentID, fh.Filename, contentType)

	status, chunkCount := s.processUpload(ctx, documentID, fh, contentType)

	// 目录记录是尽力而为的：写入失败不改变已得出的摄取结果
	catalogErr := s.docRepo.Create(&model.Document{
		ID:         documentID,
		Filename:   fh.Filename,
		Status:     status,
		ChunkCount: chunkCount,
	})
	if catalogErr != nil {
		log.Errorf("[DocumentService] 写入文档目录失败, ID: %s, error: %v", documentID, catalogErr)
	}

	if chunkCount > 0 {
		s.producer.PublishDocumentEvent(ctx, events.DocumentEvent{
			Type:       events.TypeDocumentIngested,
			DocumentID: documentID,
			Filename:   fh.Filename,
			ChunkCount: chunkCount,
			Timestamp:  time.Now().UTC(),
		})
	}

	log.Infof("[DocumentService] 文件摄取完成, ID: %s, 状态: %s, 分块数: %d", documentID, status, chunkCount)
	return model.DocumentCreateResponse{ID: documentID, Filename: fh.Filename, Status: status}
}

// processUpload 执行单个文件的处理流程：落临时盘、选择加载器、提取文本、
// 切分向量化入库。返回这次上传的最终状态与写入的分块数。
// 临时文件无论成败都会被清理。
func (s *documentService) processUpload(ctx context.Context, documentID string, fh *multipart.FileHeader, contentType string) (string, int) {
	tmpPath, err := s.saveToTemp(fh)
	if err != nil {
		log.Errorf("[DocumentService] 写入临时文件失败, 文件名: %s, error: %v", fh.Filename, err)
		return model.StatusErrorPrefix + err.Error(), 0
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			log.Warnf("[DocumentService] 清理临时文件失败: %s, error: %v", tmpPath, err)
		}
	}()

	pages, err := loader.Load(tmpPath, fh.Filename, contentType)
	if errors.Is(err, loader.ErrUnsupportedType) {
		log.Warnf("[DocumentService] 不支持的文件类型, 文件名: %s, Content-Type: %s", fh.Filename, contentType)
		return fmt.Sprintf("%sunsupported file type %s", model.StatusErrorPrefix, contentType), 0
	}
	if err != nil {
		log.Errorf("[DocumentService] 提取文本失败, 文件名: %s, error: %v", fh.Filename, err)
		return model.StatusErrorPrefix + err.Error(), 0
	}

	chunkCount, err := s.processor.Process(ctx, documentID, fh.Filename, pages)
	if err != nil {
		log.Errorf("[DocumentService] 文档处理失败, ID: %s, error: %v", documentID, err)
		return model.StatusErrorPrefix + err.Error(), 0
	}

	if chunkCount > 0 {
		return model.StatusProcessed, chunkCount
	}
	return model.StatusEmpty, 0
}

// saveToTemp 将上传内容写入保留原扩展名的临时文件。
func (s *documentService) saveToTemp(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "rag-upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("写入临时文件失败: %w", err)
	}
	return tmp.Name(), nil
}

// List 从文档目录返回一页文档摘要。目录涵盖每一次上传，列表是完整的。
func (s *documentService) List(_ context.Context, limit, offset int) (*model.DocumentListResponse, error) {
	docs, total, err := s.docRepo.List(offset, limit)
	if err != nil {
		return nil, fmt.Errorf("查询文档目录失败: %w", err)
	}

	summaries := make([]model.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, model.DocumentSummary{
			ID:            doc.ID,
			Filename:      doc.Filename,
			Status:        doc.Status,
			IndexedChunks: doc.ChunkCount,
			AddedOn:       doc.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return &model.DocumentListResponse{
		Documents: summaries,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

// Get 按文档 ID 返回摘要；没有分块时返回 ErrDocumentNotFound。
// 分块计数以向量库的 count 为准，不受单次拉取上限影响。
func (s *documentService) Get(ctx context.Context, documentID string) (*model.DocumentSummary, error) {
	count, err := s.store.CountByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("统计文档分块失败: %w", err)
	}
	if count == 0 {
		return nil, ErrDocumentNotFound
	}

	chunks, err := s.store.ChunksByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("查询文档分块失败: %w", err)
	}
	if len(chunks) == 0 {
		return nil, ErrDocumentNotFound
	}

	summary := &model.DocumentSummary{
		ID:            documentID,
		Filename:      chunks[0].Chunk.Filename,
		Status:        model.StatusIndexed,
		IndexedChunks: count,
	}
	if doc, err := s.docRepo.FindByID(documentID); err == nil {
		summary.AddedOn = doc.CreatedAt.UTC().Format(time.RFC3339)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("[DocumentService] 查询文档目录失败, ID: %s, error: %v", documentID, err)
	}
	return summary, nil
}

// Delete 按文档 ID 删除其全部分块并清理目录记录。
// 删除基于 source_document_id 的单条按查询删除，覆盖任意分块数的文档。
// 返回删除的分块数；没有分块时返回 ErrDocumentNotFound。
func (s *documentService) Delete(ctx context.Context, documentID string) (int, error) {
	chunks, err := s.store.ChunksByDocumentID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("查询文档分块失败: %w", err)
	}
	if len(chunks) == 0 {
		return 0, ErrDocumentNotFound
	}
	filename := chunks[0].Chunk.Filename

	deleted, err := s.store.DeleteByDocumentID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("删除文档分块失败: %w", err)
	}

	if err := s.docRepo.DeleteByID(documentID); err != nil {
		log.Warnf("[DocumentService] 删除文档目录记录失败, ID: %s, error: %v", documentID, err)
	}

	s.producer.PublishDocumentEvent(ctx, events.DocumentEvent{
		Type:       events.TypeDocumentDeleted,
		DocumentID: documentID,
		Filename:   filename,
		ChunkCount: deleted,
		Timestamp:  time.Now().UTC(),
	})

	log.Infof("[DocumentService] 文档删除成功, ID: %s, 删除分块数: %d", documentID, deleted)
	return deleted, nil
}
