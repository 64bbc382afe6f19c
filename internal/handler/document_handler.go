package handler

import (
	"errors"
	"net/http"

	"legal-nav-go/internal/service"
	"legal-nav-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 结构体定义了文档集合管理相关的处理器。
type DocumentHandler struct {
	documentService service.DocumentService
	version         string
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(documentService service.DocumentService, version string) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, version: version}
}

// Root 返回服务的基础信息。
func (h *DocumentHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Legal Document Navigator",
		"version": h.version,
		"status":  "running",
	})
}

// Health 是健康检查的 Gin 处理函数。
func (h *DocumentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.documentService.Health(c.Request.Context()))
}

// Stats 返回向量索引的集合统计信息。
func (h *DocumentHandler) Stats(c *gin.Context) {
	stats, err := h.documentService.Stats(c.Request.Context())
	if err != nil {
		log.Errorf("[DocumentHandler] 获取集合统计失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get collection stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetChunks 返回指定文件的全部分块。
func (h *DocumentHandler) GetChunks(c *gin.Context) {
	filename := c.Param("filename")
	chunks, err := h.documentService.FindByFile(c.Request.Context(), filename)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found: " + filename})
			return
		}
		log.Errorf("[DocumentHandler] 查询文档分块失败, file: %s, Error: %v", filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get document chunks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":     filename,
		"total_chunks": len(chunks),
		"chunks":       chunks,
	})
}

// ClearAll 清空向量索引与全部文档台账。仅限持有服务令牌的客户端调用。
func (h *DocumentHandler) ClearAll(c *gin.Context) {
	if err := h.documentService.ClearAll(c.Request.Context()); err != nil {
		log.Errorf("[DocumentHandler] 清空文档失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All documents cleared from the collection",
	})
}

// Download 为指定文件的原件归档生成预签名下载链接。
func (h *DocumentHandler) Download(c *gin.Context) {
	filename := c.Param("filename")
	url, err := h.documentService.DownloadURL(c.Request.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found: " + filename})
		case errors.Is(err, service.ErrNoArchivedCopy):
			c.JSON(http.StatusNotFound, gin.H{"error": "no archived copy available for: " + filename})
		default:
			log.Errorf("[DocumentHandler] 生成下载链接失败, file: %s, Error: %v", filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate download url"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":   filename,
		"url":        url,
		"expires_in": 3600,
	})
}
