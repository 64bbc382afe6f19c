package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"legal-nav-go/internal/model"
	"legal-nav-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngestService struct {
	result *model.UploadResult
	err    error
}

func (f *fakeIngestService) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (*model.UploadResult, error) {
	return f.result, f.err
}

func setupUploadRouter(svc *fakeIngestService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/upload", NewUploadHandler(svc).Upload)
	return r
}

func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadEndpoint_Success(t *testing.T) {
	svc := &fakeIngestService{result: &model.UploadResult{
		Success:       true,
		Message:       "Successfully processed lease.pdf",
		Filename:      "lease.pdf",
		ChunksCreated: 4,
		DocumentIDs:   []string{"md5_0", "md5_1", "md5_2", "md5_3"},
	}}
	r := setupUploadRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "lease.pdf", []byte("fake pdf bytes")))

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.UploadResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.ChunksCreated)
	assert.Len(t, resp.DocumentIDs, 4)
}

func TestUploadEndpoint_MissingFile(t *testing.T) {
	r := setupUploadRouter(&fakeIngestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpoint_UnsupportedType(t *testing.T) {
	svc := &fakeIngestService{err: service.ErrUnsupportedFileType}
	r := setupUploadRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "malware.exe", []byte("bin")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpoint_FileTooLarge(t *testing.T) {
	svc := &fakeIngestService{err: service.ErrFileTooLarge}
	r := setupUploadRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "huge.pdf", []byte("bin")))

	// 校验失败统一返回 400
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpoint_ProcessingFailure(t *testing.T) {
	svc := &fakeIngestService{err: assert.AnError}
	r := setupUploadRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "broken.pdf", []byte("bin")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
