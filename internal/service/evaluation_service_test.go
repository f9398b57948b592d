package service

import (
	"context"
	"testing"
)

func TestEvaluate_AllMetricsWithCollaborators(t *testing.T) {
	chat := &fakeLLM{answer: "What is Go?\nWho created Go?\n\nWhen was Go released?"}
	embedder := &fakeEmbedder{}
	svc := NewEvaluationService(chat, embedder, 3)

	scores := svc.Evaluate(context.Background(), "what is go",
		"Go is a programming language created at Google.",
		[]string{"golang is a language"},
		"Go is a programming language.")

	if scores.ResponseRelevancy == nil {
		t.Fatal("expected response relevancy to be computed")
	}
	if *scores.ResponseRelevancy <= 0 || *scores.ResponseRelevancy > 1 {
		t.Fatalf("relevancy out of range: %f", *scores.ResponseRelevancy)
	}
	if scores.BleuScore == nil || scores.RougeScore == nil {
		t.Fatalf("expected bleu and rouge with reference answer, got %+v", scores)
	}
	if *scores.RougeScore <= 0 {
		t.Fatalf("expected positive rouge for overlapping answers, got %f", *scores.RougeScore)
	}

	// 相关度问题生成只调用一次评估模型
	if len(chat.calls) != 1 {
		t.Fatalf("expected one chat call, got %d", len(chat.calls))
	}
}

func TestEvaluate_NilCollaboratorsSkipRelevancy(t *testing.T) {
	svc := NewEvaluationService(nil, nil, 3)

	scores := svc.Evaluate(context.Background(), "q", "some answer", nil, "some reference")
	if scores.ResponseRelevancy != nil {
		t.Fatalf("expected relevancy to be skipped, got %f", *scores.ResponseRelevancy)
	}
	// 词法指标不依赖评估模型
	if scores.BleuScore == nil || scores.RougeScore == nil {
		t.Fatalf("expected lexical metrics without collaborators, got %+v", scores)
	}
}

func TestEvaluate_NoReferenceSkipsLexicalMetrics(t *testing.T) {
	chat := &fakeLLM{answer: "What is Go?"}
	svc := NewEvaluationService(chat, &fakeEmbedder{}, 3)

	scores := svc.Evaluate(context.Background(), "q", "some answer", nil, "")
	if scores.BleuScore != nil || scores.RougeScore != nil {
		t.Fatalf("expected no lexical scores without reference, got %+v", scores)
	}
	if scores.ResponseRelevancy == nil {
		t.Fatal("expected relevancy to be computed independently of reference")
	}
}

func TestEvaluate_ChatFailureLeavesRelevancyNull(t *testing.T) {
	chat := &fakeLLM{chatErr: errBoom}
	svc := NewEvaluationService(chat, &fakeEmbedder{}, 3)

	scores := svc.Evaluate(context.Background(), "q", "some answer", nil, "")
	if scores.ResponseRelevancy != nil {
		t.Fatalf("expected null relevancy on chat failure, got %f", *scores.ResponseRelevancy)
	}
}

func TestEvaluate_EmptyAnswerSkipsRelevancy(t *testing.T) {
	chat := &fakeLLM{answer: "What is Go?"}
	svc := NewEvaluationService(chat, &fakeEmbedder{}, 3)

	scores := svc.Evaluate(context.Background(), "q", "", nil, "")
	if scores.ResponseRelevancy != nil {
		t.Fatal("expected relevancy to be skipped for empty answer")
	}
	if len(chat.calls) != 0 {
		t.Fatalf("expected no chat call for empty answer, got %d", len(chat.calls))
	}
}
