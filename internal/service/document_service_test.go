package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"legal-nav-go/internal/config"
	"legal-nav-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChunkRepo struct {
	deleted bool
}

func (f *fakeChunkRepo) BatchCreate(chunks []*model.DocumentChunk) error { return nil }
func (f *fakeChunkRepo) FindByFileMD5(fileMD5 string) ([]*model.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) DeleteByFileMD5(fileMD5 string) error { return nil }
func (f *fakeChunkRepo) DeleteAll() error {
	f.deleted = true
	return nil
}

type fakeUploadRepo struct {
	deleted bool
	uploads map[string]*model.DocumentUpload
}

func (f *fakeUploadRepo) Create(upload *model.DocumentUpload) error { return nil }
func (f *fakeUploadRepo) FindByMD5(fileMD5 string) (*model.DocumentUpload, error) {
	return nil, nil
}
func (f *fakeUploadRepo) FindByFileName(fileName string) (*model.DocumentUpload, error) {
	return f.uploads[fileName], nil
}
func (f *fakeUploadRepo) MarkProcessed(fileMD5 string, status, chunkCount int) error { return nil }
func (f *fakeUploadRepo) DeleteAll() error {
	f.deleted = true
	return nil
}

type fakeCacheRepo struct {
	invalidated bool
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string) (*model.QueryResult, error) {
	return nil, nil
}
func (f *fakeCacheRepo) Set(ctx context.Context, key string, result *model.QueryResult, ttl time.Duration) error {
	return nil
}
func (f *fakeCacheRepo) InvalidateAll(ctx context.Context) error {
	f.invalidated = true
	return nil
}

func newTestDocumentService(store *fakeStore, chunkRepo *fakeChunkRepo, uploadRepo *fakeUploadRepo, cacheRepo *fakeCacheRepo) DocumentService {
	return NewDocumentService(
		store, chunkRepo, uploadRepo, cacheRepo,
		config.ElasticsearchConfig{IndexName: "legal_documents", Addresses: "https://127.0.0.1:9200"},
		config.MinIOConfig{BucketName: "legal-nav"},
		"1.0.0",
	)
}

func TestStats(t *testing.T) {
	store := &fakeStore{count: 42}
	svc := newTestDocumentService(store, &fakeChunkRepo{}, &fakeUploadRepo{}, &fakeCacheRepo{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "legal_documents", stats.CollectionName)
	assert.Equal(t, 42, stats.DocumentCount)
}

func TestHealth_Connected(t *testing.T) {
	svc := newTestDocumentService(&fakeStore{count: 1}, &fakeChunkRepo{}, &fakeUploadRepo{}, &fakeCacheRepo{})

	health := svc.Health(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "1.0.0", health.Version)
	assert.Equal(t, "connected", health.VectorstoreStatus)
}

func TestHealth_IndexUnavailable(t *testing.T) {
	store := &fakeStore{countErr: errors.New("connection refused")}
	svc := newTestDocumentService(store, &fakeChunkRepo{}, &fakeUploadRepo{}, &fakeCacheRepo{})

	health := svc.Health(context.Background())
	// 索引不可达时整体状态为 unhealthy，但接口仍返回 200
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "unavailable", health.VectorstoreStatus)
}

func TestFindByFile_Found(t *testing.T) {
	store := &fakeStore{docs: []model.ChunkDocument{
		{SourceFile: "lease.pdf", Page: 1, ChunkIndex: 0, Content: "first"},
		{SourceFile: "lease.pdf", Page: 2, ChunkIndex: 1, Content: "second"},
	}}
	svc := newTestDocumentService(store, &fakeChunkRepo{}, &fakeUploadRepo{}, &fakeCacheRepo{})

	chunks, err := svc.FindByFile(context.Background(), "lease.pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Content)
	assert.Equal(t, "1", chunks[0].Page)
	assert.Equal(t, "2", chunks[1].Page)
}

func TestFindByFile_NotFound(t *testing.T) {
	svc := newTestDocumentService(&fakeStore{}, &fakeChunkRepo{}, &fakeUploadRepo{}, &fakeCacheRepo{})

	_, err := svc.FindByFile(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestClearAll_PurgesEverything(t *testing.T) {
	chunkRepo := &fakeChunkRepo{}
	uploadRepo := &fakeUploadRepo{}
	cacheRepo := &fakeCacheRepo{}
	svc := newTestDocumentService(&fakeStore{}, chunkRepo, uploadRepo, cacheRepo)

	err := svc.ClearAll(context.Background())
	require.NoError(t, err)
	assert.True(t, chunkRepo.deleted)
	assert.True(t, uploadRepo.deleted)
	assert.True(t, cacheRepo.invalidated)
}

func TestDownloadURL_NotFound(t *testing.T) {
	svc := newTestDocumentService(&fakeStore{}, &fakeChunkRepo{}, &fakeUploadRepo{uploads: map[string]*model.DocumentUpload{}}, &fakeCacheRepo{})

	_, err := svc.DownloadURL(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDownloadURL_NoArchivedCopy(t *testing.T) {
	uploadRepo := &fakeUploadRepo{uploads: map[string]*model.DocumentUpload{
		"seed.pdf": {FileName: "seed.pdf", ObjectName: ""},
	}}
	svc := newTestDocumentService(&fakeStore{}, &fakeChunkRepo{}, uploadRepo, &fakeCacheRepo{})

	_, err := svc.DownloadURL(context.Background(), "seed.pdf")
	assert.ErrorIs(t, err, ErrNoArchivedCopy)
}
