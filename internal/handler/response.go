package handler

import (
	"errors"
	"net/http"

	"github.com/ghostfund/gfs/internal/logic"
	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{
		Success: false,
		Message: message,
	})
}

// ErrorResponseFromErr 按错误类型映射状态码
// 校验错误和状态冲突返回400，项目不存在返回404，其余归为500。
func ErrorResponseFromErr(c *gin.Context, err error) {
	var validationErr *logic.ValidationError
	var stateErr *logic.StateConflictError

	switch {
	case errors.Is(err, logic.ErrProjectNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.As(err, &validationErr):
		ErrorResponse(c, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &stateErr):
		ErrorResponse(c, http.StatusBadRequest, stateErr.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, "服务器内部错误")
	}
}
