package embedding

import (
	"context"
	"math"
	"testing"

	"rag-system-go/internal/config"
)

func TestStubClient_Deterministic(t *testing.T) {
	client := NewStubClient(64)

	a, err := client.EmbedText(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := client.EmbedText(context.Background(), "the quick brown fox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a) != 64 {
		t.Fatalf("expected 64 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestStubClient_Normalized(t *testing.T) {
	client := NewStubClient(32)

	vec, err := client.EmbedText(context.Background(), "some text with several tokens in it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Fatalf("expected unit norm, got %f", norm)
	}
}

func TestStubClient_EmptyText(t *testing.T) {
	client := NewStubClient(16)

	vec, err := client.EmbedText(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[0] != 1 {
		t.Fatalf("expected fixed unit vector for empty text, got %v", vec[:4])
	}
}

func TestStubClient_BatchMatchesSingle(t *testing.T) {
	client := NewStubClient(32)
	texts := []string{"alpha", "beta", "gamma"}

	batch, err := client.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(batch))
	}
	for i, text := range texts {
		single, err := client.EmbedText(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch vector %d differs from single embedding", i)
			}
		}
	}
}

func TestNewClient_ProviderSelection(t *testing.T) {
	stub := NewClient(config.EmbeddingConfig{Provider: "stub", Dimensions: 32})
	if _, ok := stub.(*StubClient); !ok {
		t.Fatalf("expected stub client, got %T", stub)
	}

	remote := NewClient(config.EmbeddingConfig{Provider: "openai", BaseURL: "http://localhost", Dimensions: 32})
	if _, ok := remote.(*StubClient); ok {
		t.Fatal("expected non-stub client for openai provider")
	}
}
