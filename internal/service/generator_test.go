package service

import (
	"testing"

	"legal-nav-go/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_NumbersDocuments(t *testing.T) {
	chunks := []model.ChunkDocument{
		{SourceFile: "lease.pdf", Page: 2, Content: "Rent is due on the first of each month."},
		{SourceFile: "lease.pdf", Page: 5, Content: "Late fees accrue after a five day grace period."},
	}

	prompt := buildPrompt("when is rent due?", chunks)

	assert.Contains(t, prompt, "[Document 1 - Source: lease.pdf, Page: 2]")
	assert.Contains(t, prompt, "[Document 2 - Source: lease.pdf, Page: 5]")
	assert.Contains(t, prompt, "Rent is due on the first of each month.")
	assert.Contains(t, prompt, "when is rent due?")
	assert.Contains(t, prompt, "legal document assistant")
}

func TestBuildPrompt_FallbackLabels(t *testing.T) {
	chunks := []model.ChunkDocument{
		{SourceFile: "", Page: 0, Content: "orphaned text"},
	}

	prompt := buildPrompt("q", chunks)

	assert.Contains(t, prompt, "Source: Unknown")
	assert.Contains(t, prompt, "Page: N/A")
}
