package pipeline

import (
	"strings"
	"unicode"
)

// SplitText 将长文本按目标大小和重叠进行切分。
// 切分点优先落在段落边界，其次是换行、句末、逗号和词边界，
// 最后才退化为按字符硬切。chunkSize/chunkOverlap 以 rune 计数。
func SplitText(text string, chunkSize, chunkOverlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findBreak(runes, start, end)
		if chunk := strings.TrimSpace(string(runes[start:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - chunkOverlap
		if next <= start {
			// 保证窗口始终向前推进
			next = cut
		}
		start = next
	}
	return chunks
}

// findBreak 在 (start+半窗, end] 区间内从后向前寻找最优切分点。
// 回退不超过半个窗口，避免产生过碎的分块。
func findBreak(runes []rune, start, end int) int {
	min := start + (end-start)/2

	// 段落边界
	for i := end; i > min; i-- {
		if i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	// 换行
	for i := end; i > min; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	// 句末标点
	for i := end; i > min; i-- {
		switch runes[i-1] {
		case '.', '!', '?', '。', '！', '？':
			return i
		}
	}
	// 逗号
	for i := end; i > min; i-- {
		if runes[i-1] == ',' || runes[i-1] == '，' {
			return i
		}
	}
	// 词边界
	for i := end; i > min; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	// 硬切
	return end
}
