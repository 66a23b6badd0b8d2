package util

import (
	"net/http"

	"quest_reward_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	ErrorCode ErrorCode   `json:"error,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// Fail writes err using the status of its error code. Internal errors are
// logged and reported without details.
func Fail(c *gin.Context, err error) {
	code := CodeOf(err)
	status := HTTPStatus(code)
	if code == CodeInternal {
		logger.Log.Error("Internal server error", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, Response{
		Code:      status,
		Message:   MessageOf(err),
		ErrorCode: code,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:      http.StatusBadRequest,
		Message:   message,
		ErrorCode: CodeValidation,
	})
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}
