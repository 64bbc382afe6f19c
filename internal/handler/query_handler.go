// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strings"

	"legal-nav-go/internal/service"
	"legal-nav-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// QueryRequest 是 /query 的请求结构。
type QueryRequest struct {
	Query          string                 `json:"query" binding:"required"`
	TopK           int                    `json:"top_k"`
	MetadataFilter map[string]interface{} `json:"metadata_filter"`
	IncludeSources *bool                  `json:"include_sources"`
}

// SearchRequest 是 /search 的请求结构。
type SearchRequest struct {
	Query          string                 `json:"query" binding:"required"`
	TopK           int                    `json:"top_k"`
	MetadataFilter map[string]interface{} `json:"metadata_filter"`
}

// QueryHandler 结构体定义了问答与检索相关的处理器。
type QueryHandler struct {
	queryService service.QueryService
}

// NewQueryHandler 创建一个新的 QueryHandler 实例。
func NewQueryHandler(queryService service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Query 是处理问答请求的 Gin 处理函数。
// 管线内部故障不会导致非 200 响应，而是返回降级结果。
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[QueryHandler] 问答请求参数无效: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	includeSources := true
	if req.IncludeSources != nil {
		includeSources = *req.IncludeSources
	}

	result := h.queryService.Answer(c.Request.Context(), req.Query, req.TopK, req.MetadataFilter, includeSources)
	c.JSON(http.StatusOK, result)
}

// Search 是处理原始相似度检索请求的 Gin 处理函数。
// 检索故障折算为空结果集，不返回错误状态码。
func (h *QueryHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[QueryHandler] 检索请求参数无效: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	results := h.queryService.Search(c.Request.Context(), req.Query, req.TopK, req.MetadataFilter)
	c.JSON(http.StatusOK, gin.H{
		"results":       results,
		"total_results": len(results),
	})
}
