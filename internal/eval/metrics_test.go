package eval

import (
	"math"
	"testing"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Hello, World! 42 times.")
	want := []string{"hello", "world", "42", "times"}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: expected %q, got %q", i, want[i], tokens[i])
		}
	}
}

func TestBLEU_IdenticalStrings(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	if got := BLEU(text, text); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected BLEU 1.0 for identical strings, got %f", got)
	}
}

func TestBLEU_DisjointStrings(t *testing.T) {
	if got := BLEU("alpha beta gamma delta", "one two three four"); got != 0 {
		t.Fatalf("expected BLEU 0 for disjoint strings, got %f", got)
	}
}

func TestBLEU_EmptyInput(t *testing.T) {
	if got := BLEU("", "reference text"); got != 0 {
		t.Fatalf("expected BLEU 0 for empty candidate, got %f", got)
	}
	if got := BLEU("candidate text", ""); got != 0 {
		t.Fatalf("expected BLEU 0 for empty reference, got %f", got)
	}
}

func TestBLEU_ShortSentences(t *testing.T) {
	// 少于 4 个词元时 n-gram 阶数收缩，得分不应因此恒为零
	if got := BLEU("hello world", "hello world"); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected BLEU 1.0 for short identical strings, got %f", got)
	}
}

func TestBLEU_PartialOverlapBetweenZeroAndOne(t *testing.T) {
	got := BLEU("the quick brown fox jumps", "the quick brown fox runs")
	if got <= 0 || got >= 1 {
		t.Fatalf("expected partial-overlap BLEU in (0,1), got %f", got)
	}
}

func TestRougeL_IdenticalStrings(t *testing.T) {
	text := "retrieval augmented generation works well"
	if got := RougeL(text, text); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected ROUGE-L 1.0 for identical strings, got %f", got)
	}
}

func TestRougeL_DisjointStrings(t *testing.T) {
	if got := RougeL("alpha beta gamma", "one two three"); got != 0 {
		t.Fatalf("expected ROUGE-L 0 for disjoint strings, got %f", got)
	}
}

func TestRougeL_Subsequence(t *testing.T) {
	// LCS = "the fox jumps",precision=1,recall=0.6,F1=0.75
	got := RougeL("the fox jumps", "the quick fox jumps high")
	if math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("expected ROUGE-L 0.75, got %f", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{1, 0}
	c := []float32{0, 1}

	if got := CosineSimilarity(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected cosine 1.0 for identical vectors, got %f", got)
	}
	if got := CosineSimilarity(a, c); math.Abs(got) > 1e-9 {
		t.Fatalf("expected cosine 0 for orthogonal vectors, got %f", got)
	}
	if got := CosineSimilarity(a, []float32{1, 0, 0}); got != 0 {
		t.Fatalf("expected cosine 0 for mismatched dimensions, got %f", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, a); got != 0 {
		t.Fatalf("expected cosine 0 for zero vector, got %f", got)
	}
}
