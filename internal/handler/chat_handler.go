package handler

import (
	"net/http"

	"github.com/ghostfund/gfs/internal/ai"
	"github.com/ghostfund/gfs/internal/logger"
	"github.com/gin-gonic/gin"
)

// ChatHandler 聊天处理器
type ChatHandler struct {
	aiClient *ai.Client
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(aiClient *ai.Client) *ChatHandler {
	return &ChatHandler{aiClient: aiClient}
}

// Chat 平台助手对话
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "消息内容不能为空")
		return
	}

	result, err := h.aiClient.Chat(c.Request.Context(), req.Message)
	if err != nil {
		logger.Error("Failed to get chat response: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "获取回复失败")
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Success:   true,
		Response:  result.Response,
		Citations: result.Citations,
	})
}
