// Package es 提供了基于 Elasticsearch dense_vector 的向量库访问层。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"rag-system-go/internal/config"
	"rag-system-go/internal/model"
	"rag-system-go/pkg/log"
)

// maxChunksPerDocument 限定按文档拉取分块内容时一次返回的分块数上限。
// 分块计数与删除不受此上限约束 (见 CountByDocumentID / DeleteByDocumentID)。
const maxChunksPerDocument = 10000

// Store 是绑定到单一索引的向量库句柄，由 main 构造并注入各服务。
type Store struct {
	client    *elasticsearch.Client
	indexName string
}

// NewStore 构造 Elasticsearch 客户端并确保索引存在。
// dims 必须与 Embedding 服务产出的向量维度一致。
func NewStore(esCfg config.ElasticsearchConfig, dims int) (*Store, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("创建 Elasticsearch 客户端失败: %w", err)
	}

	s := &Store{client: client, indexName: esCfg.IndexName}
	if err := s.ensureIndex(dims); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureIndex 检查索引是否存在，不存在则按分块结构创建。
func (s *Store) ensureIndex(dims int) error {
	res, err := s.client.Indices.Exists([]string{s.indexName})
	if err != nil {
		return fmt.Errorf("检查索引是否存在时出错: %w", err)
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", s.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"source_document_id": { "type": "keyword" },
				"filename": { "type": "keyword" },
				"page": { "type": "integer" },
				"chunk_index": { "type": "integer" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, dims)

	res, err = s.client.Indices.Create(
		s.indexName,
		s.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("创建索引 '%s' 失败: %w", s.indexName, err)
	}
	if res.IsError() {
		return fmt.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", s.indexName, res.String())
	}

	log.Infof("索引 '%s' 创建成功", s.indexName)
	return nil
}

// IndexChunks 将一组分块写入索引。分块的 _id 由 Elasticsearch 分配。
func (s *Store) IndexChunks(ctx context.Context, chunks []model.ChunkDocument) error {
	for i, chunk := range chunks {
		docBytes, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("序列化分块 %d 失败: %w", i, err)
		}

		req := esapi.IndexRequest{
			Index:   s.indexName,
			Body:    bytes.NewReader(docBytes),
			Refresh: "true",
		}
		res, err := req.Do(ctx, s.client)
		if err != nil {
			return fmt.Errorf("索引分块 %d 失败: %w", i, err)
		}
		if res.IsError() {
			res.Body.Close()
			return fmt.Errorf("索引分块 %d 时 Elasticsearch 返回错误: %s", i, res.String())
		}
		res.Body.Close()
	}
	return nil
}

// esHits 是搜索响应中命中部分的通用结构。
type esHits struct {
	Hits struct {
		Hits []struct {
			ID     string              `json:"_id"`
			Score  float64             `json:"_score"`
			Source model.ChunkDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchSimilar 对查询向量执行 kNN 检索，返回至多 topK 个分块。
// 返回的 Score 为余弦距离 (1 - 归一化相似度)，按非递减顺序排列。
func (s *Store) SearchSimilar(ctx context.Context, vector []float32, topK int) ([]model.RetrievedChunk, error) {
	numCandidates := topK * 10
	if numCandidates < 100 {
		numCandidates = 100
	}
	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              topK,
			"num_candidates": numCandidates,
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("序列化 kNN 查询失败: %w", err)
	}

	hits, err := s.search(ctx, &buf)
	if err != nil {
		return nil, err
	}

	results := make([]model.RetrievedChunk, 0, len(hits.Hits.Hits))
	for _, hit := range hits.Hits.Hits {
		// Elasticsearch 的 cosine kNN 得分为 (1+cos)/2，转换为距离后升序即相关度降序
		results = append(results, model.RetrievedChunk{
			ID:    hit.ID,
			Chunk: hit.Source,
			Score: 1 - hit.Score,
		})
	}
	return results, nil
}

// ChunksByDocumentID 返回属于指定文档的全部分块，按 page、chunk_index 升序。
func (s *Store) ChunksByDocumentID(ctx context.Context, documentID string) ([]model.RetrievedChunk, error) {
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"source_document_id": documentID,
			},
		},
		"sort": []map[string]interface{}{
			{"page": map[string]interface{}{"order": "asc"}},
			{"chunk_index": map[string]interface{}{"order": "asc"}},
		},
		"size": maxChunksPerDocument,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("序列化 term 查询失败: %w", err)
	}

	hits, err := s.search(ctx, &buf)
	if err != nil {
		return nil, err
	}

	results := make([]model.RetrievedChunk, 0, len(hits.Hits.Hits))
	for _, hit := range hits.Hits.Hits {
		results = append(results, model.RetrievedChunk{ID: hit.ID, Chunk: hit.Source})
	}
	return results, nil
}

// CountByDocumentID 返回属于指定文档的分块总数，不受拉取上限约束。
func (s *Store) CountByDocumentID(ctx context.Context, documentID string) (int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(termQuery(documentID)); err != nil {
		return 0, fmt.Errorf("序列化 count 查询失败: %w", err)
	}

	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.indexName),
		s.client.Count.WithBody(&buf),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch count 请求失败: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count 时 Elasticsearch 返回错误: %s", res.String())
	}

	var countResp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("解析 count 响应失败: %w", err)
	}
	return countResp.Count, nil
}

// DeleteByDocumentID 按 source_document_id 删除一个文档的全部分块，
// 返回实际删除的分块数。单次 delete_by_query 覆盖任意大小的文档。
func (s *Store) DeleteByDocumentID(ctx context.Context, documentID string) (int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(termQuery(documentID)); err != nil {
		return 0, fmt.Errorf("序列化 delete_by_query 请求失败: %w", err)
	}

	res, err := s.client.DeleteByQuery(
		[]string{s.indexName},
		&buf,
		s.client.DeleteByQuery.WithContext(ctx),
		s.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return 0, fmt.Errorf("delete_by_query 请求失败: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("delete_by_query 时 Elasticsearch 返回错误: %s", res.String())
	}

	var deleteResp struct {
		Deleted  int               `json:"deleted"`
		Failures []json.RawMessage `json:"failures"`
	}
	if err := json.NewDecoder(res.Body).Decode(&deleteResp); err != nil {
		return 0, fmt.Errorf("解析 delete_by_query 响应失败: %w", err)
	}
	if len(deleteResp.Failures) > 0 {
		return deleteResp.Deleted, errors.New("delete_by_query 中存在失败的条目")
	}
	return deleteResp.Deleted, nil
}

// termQuery 构造按 source_document_id 过滤的查询体。
func termQuery(documentID string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"source_document_id": documentID,
			},
		},
	}
}

// search 执行一次搜索请求并解析命中结果。
func (s *Store) search(ctx context.Context, body io.Reader) (*esHits, error) {
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(body),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch 搜索请求失败: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
	}

	var hits esHits
	if err := json.NewDecoder(res.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("解析 Elasticsearch 响应失败: %w", err)
	}
	return &hits, nil
}
