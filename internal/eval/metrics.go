// Package eval 实现查询回答的文本重叠度指标 (BLEU, ROUGE-L) 与向量相似度。
package eval

import (
	"math"
	"strings"
	"unicode"
)

// Tokenize 将文本转为小写词元序列，忽略所有标点。
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// BLEU 计算 candidate 相对 reference 的句级 BLEU 得分 (0~1)。
// 使用至多 4-gram 的修正精度的几何平均，乘以长度惩罚因子。
// n-gram 阶数受两侧词元数限制，避免短句的精度恒为零。
func BLEU(candidate, reference string) float64 {
	cand := Tokenize(candidate)
	ref := Tokenize(reference)
	if len(cand) == 0 || len(ref) == 0 {
		return 0
	}

	maxN := 4
	if len(cand) < maxN {
		maxN = len(cand)
	}
	if len(ref) < maxN {
		maxN = len(ref)
	}

	logSum := 0.0
	for n := 1; n <= maxN; n++ {
		p := modifiedPrecision(cand, ref, n)
		if p == 0 {
			return 0
		}
		logSum += math.Log(p)
	}
	score := math.Exp(logSum / float64(maxN))

	// 长度惩罚：候选短于参考时按 exp(1-r/c) 衰减
	if len(cand) < len(ref) {
		score *= math.Exp(1 - float64(len(ref))/float64(len(cand)))
	}
	return score
}

// modifiedPrecision 计算 n-gram 修正精度：候选中每个 n-gram 的计数
// 被截断到参考中的出现次数。
func modifiedPrecision(cand, ref []string, n int) float64 {
	candCounts := ngramCounts(cand, n)
	if len(candCounts) == 0 {
		return 0
	}
	refCounts := ngramCounts(ref, n)

	matched := 0
	total := 0
	for gram, count := range candCounts {
		total += count
		refCount := refCounts[gram]
		if count < refCount {
			matched += count
		} else {
			matched += refCount
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

func ngramCounts(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// RougeL 计算 candidate 相对 reference 的 ROUGE-L F1 得分 (0~1)，
// 基于词元级最长公共子序列。
func RougeL(candidate, reference string) float64 {
	cand := Tokenize(candidate)
	ref := Tokenize(reference)
	if len(cand) == 0 || len(ref) == 0 {
		return 0
	}

	lcs := lcsLength(cand, ref)
	if lcs == 0 {
		return 0
	}
	precision := float64(lcs) / float64(len(cand))
	recall := float64(lcs) / float64(len(ref))
	return 2 * precision * recall / (precision + recall)
}

// lcsLength 用滚动数组计算两个词元序列的最长公共子序列长度。
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// CosineSimilarity 计算两个向量的余弦相似度，维度不一致或零向量返回 0。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
