package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"rag-system-go/internal/model"
	"rag-system-go/pkg/llm"
)

// fakeEmbedder 返回确定性的小向量，并记录被向量化的文本。
type fakeEmbedder struct {
	embedErr error
	texts    []string
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.texts = append(f.texts, texts...)
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1, 0}
	}
	return vectors, nil
}

// fakeStore 是内存版向量库，同时充当摄取侧的分块写入方。
type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	chunks    map[string]model.ChunkDocument // 分块 ID -> 分块
	indexErr  error
	searchErr error
	hits      []model.RetrievedChunk // SearchSimilar 的固定返回
}

func newFakeStore() *fakeStore {
	return &fakeStore{chunks: make(map[string]model.ChunkDocument)}
}

func (f *fakeStore) IndexChunks(_ context.Context, chunks []model.ChunkDocument) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, chunk := range chunks {
		f.nextID++
		f.chunks[fmt.Sprintf("chunk-%d", f.nextID)] = chunk
	}
	return nil
}

func (f *fakeStore) SearchSimilar(_ context.Context, _ []float32, topK int) ([]model.RetrievedChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if topK < len(f.hits) {
		return f.hits[:topK], nil
	}
	return f.hits, nil
}

func (f *fakeStore) ChunksByDocumentID(_ context.Context, documentID string) ([]model.RetrievedChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.RetrievedChunk
	for id, chunk := range f.chunks {
		if chunk.SourceDocumentID == documentID {
			result = append(result, model.RetrievedChunk{ID: id, Chunk: chunk})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Chunk, result[j].Chunk
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.ChunkIndex < b.ChunkIndex
	})
	return result, nil
}

func (f *fakeStore) CountByDocumentID(_ context.Context, documentID string) (int, error) {
	if f.searchErr != nil {
		return 0, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, chunk := range f.chunks {
		if chunk.SourceDocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) DeleteByDocumentID(_ context.Context, documentID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deleted := 0
	for id, chunk := range f.chunks {
		if chunk.SourceDocumentID == documentID {
			delete(f.chunks, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeLLM 记录收到的消息并返回配置好的回答。
type fakeLLM struct {
	answer  string
	chatErr error
	calls   [][]llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.answer, nil
}

// fakeDocRepo 是内存版文档目录。
type fakeDocRepo struct {
	mu   sync.Mutex
	docs []*model.Document
}

func (f *fakeDocRepo) Create(doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeDocRepo) FindByID(id string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocRepo) List(offset, limit int) ([]*model.Document, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := int64(len(f.docs))
	if offset >= len(f.docs) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(f.docs) {
		end = len(f.docs)
	}
	return f.docs[offset:end], total, nil
}

func (f *fakeDocRepo) DeleteByID(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, doc := range f.docs {
		if doc.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeCache 是内存版问答缓存。
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*model.CachedAnswer
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*model.CachedAnswer)}
}

func (f *fakeCache) key(query string, topK int) string {
	return fmt.Sprintf("%s|%d", strings.TrimSpace(query), topK)
}

func (f *fakeCache) Get(_ context.Context, query string, topK int) (*model.CachedAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[f.key(query, topK)], nil
}

func (f *fakeCache) Set(_ context.Context, query string, topK int, answer *model.CachedAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.key(query, topK)] = answer
	f.sets++
	return nil
}

var errBoom = errors.New("boom")
