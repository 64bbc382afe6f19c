package handler

import (
	"errors"
	"net/http"

	"legal-nav-go/internal/service"
	"legal-nav-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UploadHandler 结构体定义了文档上传相关的处理器。
type UploadHandler struct {
	ingestService service.IngestService
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(ingestService service.IngestService) *UploadHandler {
	return &UploadHandler{ingestService: ingestService}
}

// Upload 是处理文档上传请求的 Gin 处理函数。
// 接入同步完成，响应中携带生成的分块数量与 ID。
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warnf("[UploadHandler] 上传请求缺少文件: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	result, err := h.ingestService.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType),
			errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Errorf("[UploadHandler] 上传处理失败, file: %s, Error: %v", fileHeader.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process document"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
