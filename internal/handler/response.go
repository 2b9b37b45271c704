package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Community_Graph/internal/middleware"
	"Community_Graph/internal/pkg"
	"Community_Graph/internal/repository/redis"
	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusOf 业务错误类别到 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, pkg.ErrRefreshExpired),
		errors.Is(err, pkg.ErrRefreshInvalid),
		errors.Is(err, pkg.ErrTokenInvalid),
		errors.Is(err, pkg.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, redis.ErrRedisUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"msg": "internal error"})
		return
	}
	body := gin.H{"msg": err.Error()}
	var se *service.Error
	if errors.As(err, &se) && len(se.Fields) > 0 {
		body["errors"] = se.Fields
	}
	c.JSON(status, body)
}

func badParams(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params", "errors": err.Error()})
}

func ok(c *gin.Context, msg string, data any) {
	body := gin.H{"msg": msg}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusCreated, gin.H{"msg": msg, "data": data})
}

func page(c *gin.Context, list any, next uint64) {
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "data": list, "next_cursor": next})
}

func userIDFromCtx(c *gin.Context) uint64 {
	if v, ok := c.Get(middleware.ContextUserIDKey); ok {
		if id, ok2 := v.(uint64); ok2 {
			return id
		}
	}
	return 0
}

// pathID 解析路径中的 id，失败时直接写 400
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid " + name})
		return 0, false
	}
	return id, true
}

// cursorQuery 游标分页参数，非法值按默认处理
func cursorQuery(c *gin.Context) (uint64, int) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	return cursor, limit
}
