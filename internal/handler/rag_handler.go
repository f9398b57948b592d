package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"rag-system-go/internal/model"
	"rag-system-go/internal/service"
	"rag-system-go/pkg/log"
)

// RagHandler 负责处理检索问答请求。
type RagHandler struct {
	queryService service.QueryService
}

// NewRagHandler 创建一个新的 RagHandler 实例。
func NewRagHandler(queryService service.QueryService) *RagHandler {
	return &RagHandler{queryService: queryService}
}

// RagQueryRequest 是查询接口的请求体。top_k 缺省为 5，允许范围 1~20。
type RagQueryRequest struct {
	Query           string `json:"query" binding:"required"`
	TopK            *int   `json:"top_k" binding:"omitempty,min=1,max=20"`
	ReferenceAnswer string `json:"reference_answer"`
}

// Query 处理一次检索问答请求。检索失败返回 500；
// 模型或评估失败由服务层退化处理，始终返回 200。
func (h *RagHandler) Query(c *gin.Context) {
	var req RagQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[RagHandler] 查询请求体不合法: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: 'query' is required and 'top_k' must be between 1 and 20."})
		return
	}

	input := model.RagQueryInput{
		Query:           req.Query,
		ReferenceAnswer: req.ReferenceAnswer,
	}
	if req.TopK != nil {
		input.TopK = *req.TopK
	}

	resp, err := h.queryService.Query(c.Request.Context(), input)
	if err != nil {
		log.Error("[RagHandler] 查询处理失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error during RAG query processing: %s", err)})
		return
	}
	c.JSON(http.StatusOK, resp)
}
