package service

import (
	"context"
	"mime/multipart"
	"testing"

	"legal-nav-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIngestCfg() config.IngestConfig {
	return config.IngestConfig{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		MaxFileSizeMB:     50,
		AllowedExtensions: []string{".pdf", ".docx", ".txt"},
	}
}

func TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, testIngestCfg(), "bucket")

	header := &multipart.FileHeader{Filename: "malware.exe", Size: 1024}
	_, err := svc.Upload(context.Background(), header)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestUpload_RejectsUppercaseUnsupportedExtension(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, testIngestCfg(), "bucket")

	header := &multipart.FileHeader{Filename: "notes.MD", Size: 1024}
	_, err := svc.Upload(context.Background(), header)

	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestUpload_AcceptsUppercaseAllowedExtension(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, testIngestCfg(), "bucket")

	// 扩展名大小写不敏感：校验通过后才会因无法打开 multipart 文件而失败，
	// 此时错误不应再是类型或大小校验错误
	header := &multipart.FileHeader{Filename: "Contract.PDF", Size: 1024}
	_, err := svc.Upload(context.Background(), header)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFileType)
	assert.NotErrorIs(t, err, ErrFileTooLarge)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, testIngestCfg(), "bucket")

	header := &multipart.FileHeader{Filename: "huge.pdf", Size: 51 * 1024 * 1024}
	_, err := svc.Upload(context.Background(), header)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUpload_SizeAtLimitPassesValidation(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, testIngestCfg(), "bucket")

	header := &multipart.FileHeader{Filename: "exact.pdf", Size: 50 * 1024 * 1024}
	_, err := svc.Upload(context.Background(), header)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFileTooLarge)
}
