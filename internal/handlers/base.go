package handlers

import (
	"errors"
	"net/http"

	"lightbulb/internal/middleware"
	"lightbulb/internal/models"
	"lightbulb/internal/search"
	"lightbulb/internal/services"

	"github.com/gin-gonic/gin"
)

// CurrentUser 取当前登录用户，匿名请求返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// ViewerID 当前查看者 id，匿名时为 nil
func ViewerID(c *gin.Context) *uint {
	if user := CurrentUser(c); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// renderError 领域错误到 HTTP 状态码的统一映射。
// 空结果（空页、不存在的详情）不会走到这里，它们是成功响应。
func renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"error": "already voted"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, search.ErrIndexUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
