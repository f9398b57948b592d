package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// StubClient is a deterministic in-process embedder used when no real
// embedding backend is configured. Vectors are stable across runs for the
// same input, so retrieval stays consistent even in degraded mode.
type StubClient struct {
	dimensions int
}

// NewStubClient 创建指定维度的 stub embedder。
func NewStubClient(dimensions int) *StubClient {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &StubClient{dimensions: dimensions}
}

func (c *StubClient) EmbedText(_ context.Context, text string) ([]float32, error) {
	return c.embed(text), nil
}

func (c *StubClient) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = c.embed(t)
	}
	return vectors, nil
}

// embed 将文本的词元哈希到固定维度的桶中并做 L2 归一化。
func (c *StubClient) embed(text string) []float32 {
	vec := make([]float32, c.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[int(h.Sum32())%c.dimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// 空文本给一个固定的单位向量，避免零向量破坏余弦相似度
		vec[0] = 1
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
