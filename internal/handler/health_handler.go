package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler 负责根路径的存活探测响应。
type HealthHandler struct{}

// NewHealthHandler 创建一个新的 HealthHandler 实例。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Welcome 返回欢迎信息与 API 文档位置。
func (h *HealthHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":          "Welcome to the RAG Testing API!",
		"documentation_v1": "/api/v1/docs",
	})
}
