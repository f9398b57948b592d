package model

// DocumentCreateResponse 是上传接口中单个文件的处理结果。
type DocumentCreateResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// DocumentSummary 是文档列表与详情接口返回的文档摘要。
type DocumentSummary struct {
	ID            string `json:"id"`
	Filename      string `json:"filename,omitempty"`
	Status        string `json:"status,omitempty"`
	IndexedChunks int    `json:"indexed_chunks"`
	AddedOn       string `json:"added_on,omitempty"`
}

// DocumentListResponse 是文档列表接口的分页响应。
type DocumentListResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Total     int64             `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// DocumentDeleteResponse 是文档删除接口的响应。
type DocumentDeleteResponse struct {
	Message string `json:"message"`
}

// RagQueryInput 是查询服务的入参。
type RagQueryInput struct {
	Query           string
	TopK            int
	ReferenceAnswer string
}

// SourceDocument 是查询响应中的一条检索来源。
// ID 为分块所属文档的 source_document_id，Score 为余弦距离。
type SourceDocument struct {
	ID           string  `json:"id"`
	DocumentName string  `json:"document_name,omitempty"`
	Snippet      string  `json:"snippet"`
	Score        float64 `json:"score"`
}

// MetricScore 是一次查询的评估得分集合，三项彼此独立、均可缺失。
type MetricScore struct {
	ResponseRelevancy *float64 `json:"response_relevancy"`
	BleuScore         *float64 `json:"bleu_score"`
	RougeScore        *float64 `json:"rouge_score"`
}

// RagQueryResponse 是查询接口的响应。
type RagQueryResponse struct {
	Answer           string           `json:"answer"`
	Sources          []SourceDocument `json:"sources"`
	QueryTimeMs      float64          `json:"query_time_ms"`
	EvaluationScores *MetricScore     `json:"evaluation_scores,omitempty"`
}

// CachedAnswer 是问答缓存中保存的条目。
type CachedAnswer struct {
	Answer  string           `json:"answer"`
	Sources []SourceDocument `json:"sources"`
}
