package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"legal-nav-go/internal/model"
	"legal-nav-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocumentService struct {
	stats     *model.CollectionStats
	statsErr  error
	health    *model.HealthStatus
	chunks    []model.ChunkDTO
	chunksErr error
	clearErr  error
	url       string
	urlErr    error
}

func (f *fakeDocumentService) Stats(ctx context.Context) (*model.CollectionStats, error) {
	return f.stats, f.statsErr
}
func (f *fakeDocumentService) Health(ctx context.Context) *model.HealthStatus { return f.health }
func (f *fakeDocumentService) FindByFile(ctx context.Context, filename string) ([]model.ChunkDTO, error) {
	return f.chunks, f.chunksErr
}
func (f *fakeDocumentService) ClearAll(ctx context.Context) error { return f.clearErr }
func (f *fakeDocumentService) DownloadURL(ctx context.Context, filename string) (string, error) {
	return f.url, f.urlErr
}

func setupDocumentRouter(svc *fakeDocumentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDocumentHandler(svc, "1.0.0")
	r.GET("/", h.Root)
	r.GET("/api/health", h.Health)
	r.GET("/api/stats", h.Stats)
	r.GET("/api/documents/:filename", h.GetChunks)
	r.GET("/api/documents/:filename/download", h.Download)
	r.DELETE("/api/documents", h.ClearAll)
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRootEndpoint(t *testing.T) {
	r := setupDocumentRouter(&fakeDocumentService{})

	w := doGet(r, "/")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.0.0", resp["version"])
}

func TestHealthEndpoint(t *testing.T) {
	svc := &fakeDocumentService{health: &model.HealthStatus{
		Status:            "healthy",
		Version:           "1.0.0",
		VectorstoreStatus: "connected",
	}}
	r := setupDocumentRouter(svc)

	w := doGet(r, "/api/health")

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.VectorstoreStatus)
}

func TestStatsEndpoint(t *testing.T) {
	svc := &fakeDocumentService{stats: &model.CollectionStats{
		CollectionName: "legal_documents",
		DocumentCount:  17,
	}}
	r := setupDocumentRouter(svc)

	w := doGet(r, "/api/stats")

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.CollectionStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 17, resp.DocumentCount)
}

func TestStatsEndpoint_Failure(t *testing.T) {
	r := setupDocumentRouter(&fakeDocumentService{statsErr: assert.AnError})

	w := doGet(r, "/api/stats")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetChunksEndpoint_Found(t *testing.T) {
	svc := &fakeDocumentService{chunks: []model.ChunkDTO{
		{Content: "clause one", Page: "1"},
		{Content: "clause two", Page: "2"},
	}}
	r := setupDocumentRouter(svc)

	w := doGet(r, "/api/documents/lease.pdf")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Filename    string           `json:"filename"`
		TotalChunks int              `json:"total_chunks"`
		Chunks      []model.ChunkDTO `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "lease.pdf", resp.Filename)
	assert.Equal(t, 2, resp.TotalChunks)
}

func TestGetChunksEndpoint_NotFound(t *testing.T) {
	r := setupDocumentRouter(&fakeDocumentService{chunksErr: service.ErrDocumentNotFound})

	w := doGet(r, "/api/documents/missing.pdf")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearAllEndpoint(t *testing.T) {
	r := setupDocumentRouter(&fakeDocumentService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
}

func TestDownloadEndpoint_NotFound(t *testing.T) {
	r := setupDocumentRouter(&fakeDocumentService{urlErr: service.ErrDocumentNotFound})

	w := doGet(r, "/api/documents/missing.pdf/download")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadEndpoint_Success(t *testing.T) {
	r := setupDocumentRouter(&fakeDocumentService{url: "https://minio.local/presigned"})

	w := doGet(r, "/api/documents/lease.pdf/download")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://minio.local/presigned", resp["url"])
}
