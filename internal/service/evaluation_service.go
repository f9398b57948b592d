package service

import (
	"context"
	"fmt"
	"strings"

	"rag-system-go/internal/eval"
	"rag-system-go/internal/model"
	"rag-system-go/pkg/embedding"
	"rag-system-go/pkg/llm"
	"rag-system-go/pkg/log"
)

// questionPromptTemplate 让评估模型从回答反推可能的问题，
// 用于计算回答与原始查询的相关度。
const questionPromptTemplate = "Generate %d concise questions that the following answer could be answering. " +
	"Return exactly one question per line, with no numbering.\n\nAnswer: %s"

// EvaluationService 对一次查询的回答计算至多三个相互独立的评估得分。
// 任一指标的前置条件缺失或计算失败都只使该项得分为空，不影响其它指标。
type EvaluationService interface {
	Evaluate(ctx context.Context, query, answer string, contexts []string, reference string) *model.MetricScore
}

type evaluationService struct {
	evalLLM        llm.Client       // 可为 nil（评估模型不可用）
	evalEmbeddings embedding.Client // 可为 nil
	questionCount  int
}

// NewEvaluationService 创建一个新的 EvaluationService 实例。
// evalLLM 或 evalEmbeddings 为 nil 时，相关度指标被跳过。
func NewEvaluationService(evalLLM llm.Client, evalEmbeddings embedding.Client, questionCount int) EvaluationService {
	if questionCount <= 0 {
		questionCount = 3
	}
	return &evaluationService{
		evalLLM:        evalLLM,
		evalEmbeddings: evalEmbeddings,
		questionCount:  questionCount,
	}
}

// Evaluate 计算回答的相关度、BLEU 与 ROUGE-L 得分。
func (s *evaluationService) Evaluate(ctx context.Context, query, answer string, contexts []string, reference string) *model.MetricScore {
	scores := &model.MetricScore{}

	if relevancy, err := s.responseRelevancy(ctx, query, answer); err != nil {
		log.Warnf("[EvaluationService] 计算 response_relevancy 失败: %v", err)
	} else {
		scores.ResponseRelevancy = relevancy
	}

	if answer != "" && reference != "" {
		bleu := eval.BLEU(answer, reference)
		scores.BleuScore = &bleu

		rouge := eval.RougeL(answer, reference)
		scores.RougeScore = &rouge
	}

	log.Infof("[EvaluationService] 评估完成, relevancy: %v, bleu: %v, rouge: %v",
		formatScore(scores.ResponseRelevancy), formatScore(scores.BleuScore), formatScore(scores.RougeScore))
	return scores
}

// responseRelevancy 由评估模型从回答生成若干候选问题，将候选问题与
// 原始查询分别向量化，取余弦相似度的均值作为相关度得分。
// 评估模型或评估向量化不可用时返回 (nil, nil)，表示该项被跳过。
func (s *evaluationService) responseRelevancy(ctx context.Context, query, answer string) (*float64, error) {
	if s.evalLLM == nil || s.evalEmbeddings == nil {
		log.Infof("[EvaluationService] 评估模型或向量化不可用, 跳过 response_relevancy")
		return nil, nil
	}
	if answer == "" {
		return nil, nil
	}

	prompt := fmt.Sprintf(questionPromptTemplate, s.questionCount, answer)
	generated, err := s.evalLLM.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("生成候选问题失败: %w", err)
	}

	var questions []string
	for _, line := range strings.Split(generated, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			questions = append(questions, line)
		}
	}
	if len(questions) == 0 {
		return nil, nil
	}

	queryVector, err := s.evalEmbeddings.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询向量化失败: %w", err)
	}
	questionVectors, err := s.evalEmbeddings.EmbedTexts(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("候选问题向量化失败: %w", err)
	}

	var sum float64
	for _, qv := range questionVectors {
		sum += eval.CosineSimilarity(queryVector, qv)
	}
	relevancy := sum / float64(len(questionVectors))
	return &relevancy, nil
}

func formatScore(score *float64) string {
	if score == nil {
		return "null"
	}
	return fmt.Sprintf("%.4f", *score)
}
