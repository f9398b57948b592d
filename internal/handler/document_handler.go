// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rag-system-go/internal/model"
	"rag-system-go/internal/service"
	"rag-system-go/pkg/log"
)

// DocumentHandler 负责处理所有与文档管理相关的 API 请求。
type DocumentHandler struct {
	docService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(docService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// Upload 处理文档上传请求。逐文件处理，单个文件失败不影响整批，
// 只有文件列表为空时才拒绝请求。
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		log.Warnf("[DocumentHandler] 解析 multipart 表单失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form."})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided."})
		return
	}
	log.Infof("[DocumentHandler] 收到上传请求, 文件数: %d", len(files))

	responses := h.docService.IngestFiles(c.Request.Context(), files)
	c.JSON(http.StatusCreated, responses)
}

// List 处理文档列表请求，limit 范围 1~1000，offset 非负。
func (h *DocumentHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parameter 'limit' must be between 1 and 1000."})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parameter 'offset' must be non-negative."})
		return
	}

	resp, err := h.docService.List(c.Request.Context(), limit, offset)
	if err != nil {
		log.Error("[DocumentHandler] 获取文档列表失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error listing documents: %s", err)})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get 处理文档详情请求，按文档 ID 返回摘要与实际分块数。
func (h *DocumentHandler) Get(c *gin.Context) {
	documentID := c.Param("documentId")

	summary, err := h.docService.Get(c.Request.Context(), documentID)
	if errors.Is(err, service.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Document with source_document_id '%s' not found or has no chunks.", documentID),
		})
		return
	}
	if err != nil {
		log.Error("[DocumentHandler] 获取文档详情失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error retrieving document details: %s", err)})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Delete 处理文档删除请求，删除该文档的全部分块并报告删除数量。
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("documentId")

	deleted, err := h.docService.Delete(c.Request.Context(), documentID)
	if errors.Is(err, service.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Document with source_document_id '%s' not found for deletion.", documentID),
		})
		return
	}
	if err != nil {
		log.Error("[DocumentHandler] 删除文档失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error deleting document: %s", err)})
		return
	}

	c.JSON(http.StatusOK, model.DocumentDeleteResponse{
		Message: fmt.Sprintf("Document %s and its %d chunks deleted successfully.", documentID, deleted),
	})
}
