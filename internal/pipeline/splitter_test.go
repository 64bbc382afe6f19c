package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Empty(t *testing.T) {
	assert.Nil(t, SplitText("", 100, 20))
	assert.Nil(t, SplitText("   \n\n  ", 100, 20))
}

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	chunks := SplitText("a short paragraph", 100, 20)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short paragraph", chunks[0])
}

func TestSplitText_ChunkSizeRespected(t *testing.T) {
	text := strings.Repeat("word ", 500)
	chunks := SplitText(text, 100, 20)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 100)
	}
}

func TestSplitText_PrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("a", 80)
	para2 := strings.Repeat("b", 80)
	text := para1 + "\n\n" + para2
	chunks := SplitText(text, 100, 10)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, para1, chunks[0])
}

func TestSplitText_SentenceBoundary(t *testing.T) {
	text := strings.Repeat("x", 70) + ". " + strings.Repeat("y", 70)
	chunks := SplitText(text, 100, 10)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "."))
}

func TestSplitText_CJKSentenceBoundary(t *testing.T) {
	text := strings.Repeat("甲", 70) + "。" + strings.Repeat("乙", 70)
	chunks := SplitText(text, 100, 10)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "。"))
}

func TestSplitText_HardCutWhenNoBoundary(t *testing.T) {
	text := strings.Repeat("z", 250)
	chunks := SplitText(text, 100, 20)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 100, len([]rune(chunks[0])))
}

func TestSplitText_OverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("z", 250)
	chunks := SplitText(text, 100, 20)
	require.GreaterOrEqual(t, len(chunks), 2)

	// 第二个分块的开头应与第一个分块的结尾重叠
	first := []rune(chunks[0])
	second := []rune(chunks[1])
	assert.Equal(t, string(first[len(first)-20:]), string(second[:20]))
}

func TestSplitText_AlwaysProgresses(t *testing.T) {
	// 重叠等于窗口时会被修正，保证不会死循环
	text := strings.Repeat("w", 500)
	chunks := SplitText(text, 100, 100)
	assert.NotEmpty(t, chunks)
}

func TestSplitText_AllContentPreserved(t *testing.T) {
	text := "The term of this agreement is five years. Either party may terminate with 30 days notice. Renewal is automatic unless notice is given."
	chunks := SplitText(text, 60, 10)

	joined := strings.Join(chunks, " ")
	for _, word := range []string{"five years", "30 days", "Renewal"} {
		assert.Contains(t, joined, word)
	}
}
