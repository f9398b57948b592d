package pipeline

import "strings"

// separators 按从粗到细的顺序尝试：段落、行、词。
// 都不可用时退化为固定窗口滑动切分。
var separators = []string{"\n\n", "\n", " "}

// Splitter 将长文本切分为带重叠的分块。
// 优先在自然边界（段落/行/词）处切分，保证单个分块不超过 chunkSize，
// 相邻分块之间保留约 chunkOverlap 的重叠。
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter 创建一个切分器。overlap 不合法时取 chunkSize 的五分之一。
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split 切分文本。短于 chunkSize 的文本原样作为唯一分块返回。
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	if runeLen(text) <= s.chunkSize {
		return []string{text}
	}
	if len(seps) == 0 {
		return s.windowSplit(text)
	}

	sep := seps[0]
	rest := seps[1:]
	if !strings.Contains(text, sep) {
		return s.split(text, rest)
	}

	var pieces []string
	for _, part := range strings.Split(text, sep) {
		if part == "" {
			continue
		}
		if runeLen(part) > s.chunkSize {
			// 单段仍然超长，用更细的分隔符继续拆
			pieces = append(pieces, s.split(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return s.merge(pieces, sep)
}

// merge 将切出的片段合并为不超过 chunkSize 的分块，
// 每次开新块时保留上一块的尾部片段作为重叠。
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var chunks []string
	var current []string
	curLen := 0

	for _, piece := range pieces {
		pieceLen := runeLen(piece)
		add := pieceLen
		if len(current) > 0 {
			add += sepLen
		}

		if curLen+add > s.chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, sep))
			for len(current) > 0 && (curLen > s.chunkOverlap || curLen+add > s.chunkSize) {
				curLen -= runeLen(current[0])
				if len(current) > 1 {
					curLen -= sepLen
				}
				current = current[1:]
			}
		}

		if len(current) > 0 {
			curLen += sepLen
		}
		current = append(current, piece)
		curLen += pieceLen
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, sep))
	}
	return chunks
}

// windowSplit 对没有任何分隔符的超长文本做固定窗口滑动切分。
func (s *Splitter) windowSplit(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.chunkOverlap
	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}
