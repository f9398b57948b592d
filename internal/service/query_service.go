package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rag-system-go/internal/model"
	"rag-system-go/internal/repository"
	"rag-system-go/pkg/embedding"
	"rag-system-go/pkg/llm"
	"rag-system-go/pkg/log"
)

const (
	defaultTopK = 5

	systemPrompt = "You are a helpful assistant that answers questions based on provided documents."

	// 固定指令模板：要求模型仅依据给定上下文作答，上下文无关时明确说明无法回答
	userPromptTemplate = "You must utilize the sources given to answer the user's query. " +
		"If the source is irrelevant to the question asked, let the user know that sources do not contain the information so you cannot answer. " +
		"Based on the following documents, please answer the query: '%s'\n\nDocuments:\n%s\n\nAnswer:"

	noResultsTemplate = "I could not find any relevant documents for your query: '%s'. Please try rephrasing or uploading more relevant documents."

	llmErrorTemplate = "An unexpected error occurred while generating the answer. (Query: %s)"
)

// QueryService 定义了检索问答操作。
type QueryService interface {
	Query(ctx context.Context, input model.RagQueryInput) (*model.RagQueryResponse, error)
}

type queryService struct {
	embeddingClient embedding.Client
	store           VectorStore
	llmClient       llm.Client
	evalService     EvaluationService
	cache           repository.QueryCacheRepository // 可为 nil（缓存禁用）
}

// NewQueryService 创建一个新的 QueryService 实例。cache 传 nil 表示禁用缓存。
func NewQueryService(
	embeddingClient embedding.Client,
	store VectorStore,
	llmClient llm.Client,
	evalService EvaluationService,
	cache repository.QueryCacheRepository,
) QueryService {
	return &queryService{
		embeddingClient: embeddingClient,
		store:           store,
		llmClient:       llmClient,
		evalService:     evalService,
		cache:           cache,
	}
}

// Query 执行一次完整的检索问答：向量化查询、kNN 检索、拼接上下文、
// 调用聊天模型生成回答，可选地对回答做评估。
// 检索失败返回 error（上层映射为 500）；模型失败退化为模板回答。
func (s *queryService) Query(ctx context.Context, input model.RagQueryInput) (*model.RagQueryResponse, error) {
	start := time.Now()
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	log.Infof("[QueryService] 收到查询, query: '%s', topK: %d, 带参考答案: %t",
		input.Query, topK, input.ReferenceAnswer != "")

	// 带参考答案的请求需要新鲜的回答用于评估，跳过缓存
	useCache := s.cache != nil && input.ReferenceAnswer == ""
	if useCache {
		if cached, err := s.cache.Get(ctx, input.Query, topK); err != nil {
			log.Warnf("[QueryService] 读取问答缓存失败: %v", err)
		} else if cached != nil {
			log.Infof("[QueryService] 问答缓存命中, query: '%s'", input.Query)
			return &model.RagQueryResponse{
				Answer:      cached.Answer,
				Sources:     cached.Sources,
				QueryTimeMs: elapsedMs(start),
			}, nil
		}
	}

	// 1. 向量化查询并做最近邻检索
	queryVector, err := s.embeddingClient.EmbedText(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("查询向量化失败: %w", err)
	}
	hits, err := s.store.SearchSimilar(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("向量检索失败: %w", err)
	}
	log.Infof("[QueryService] 检索完成, 命中 %d 个分块", len(hits))

	sources := make([]model.SourceDocument, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, model.SourceDocument{
			ID:           hit.Chunk.SourceDocumentID,
			DocumentName: hit.Chunk.Filename,
			Snippet:      hit.Chunk.TextContent,
			Score:        hit.Score,
		})
	}

	// 2. 生成回答。无命中时直接返回模板回答，不调用模型。
	var answer string
	if len(sources) == 0 {
		answer = fmt.Sprintf(noResultsTemplate, input.Query)
	} else {
		answer = s.generateAnswer(ctx, input.Query, sources)
	}

	// 3. 带参考答案时做评估；评估失败不影响请求结果
	var scores *model.MetricScore
	if input.ReferenceAnswer != "" {
		contexts := make([]string, len(sources))
		for i, src := range sources {
			contexts[i] = src.Snippet
		}
		scores = s.evalService.Evaluate(ctx, input.Query, answer, contexts, input.ReferenceAnswer)
	}

	// 无命中的模板回答不写缓存：新文档入库后同一查询要能立即拿到新鲜结果
	if useCache && len(sources) > 0 {
		err := s.cache.Set(ctx, input.Query, topK, &model.CachedAnswer{Answer: answer, Sources: sources})
		if err != nil {
			log.Warnf("[QueryService] 写入问答缓存失败: %v", err)
		}
	}

	return &model.RagQueryResponse{
		Answer:           answer,
		Sources:          sources,
		QueryTimeMs:      elapsedMs(start),
		EvaluationScores: scores,
	}, nil
}

// generateAnswer 拼接检索到的上下文并调用聊天模型。
// 模型调用失败时返回模板化的错误回答。
func (s *queryService) generateAnswer(ctx context.Context, query string, sources []model.SourceDocument) string {
	snippets := make([]string, len(sources))
	for i, src := range sources {
		snippets[i] = src.Snippet
	}
	contextBlock := strings.Join(snippets, "\n\n")

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, query, contextBlock)},
	}

	answer, err := s.llmClient.Chat(ctx, messages)
	if err != nil {
		log.Errorf("[QueryService] 聊天模型调用失败, query: '%s', error: %v", query, err)
		return fmt.Sprintf(llmErrorTemplate, query)
	}
	return answer
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
