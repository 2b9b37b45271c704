package handler

import (
	"net/http"

	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register 注册接口
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, "register succeeded", user)
}

// Login 登录接口
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "login succeeded", token)
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), userIDFromCtx(c)); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "logout succeeded", nil)
}

// TokenRefresh 利用refresh来更新access
func (h *UserHandler) TokenRefresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}

	token, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", token)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req service.PasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), userIDFromCtx(c), req); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "change password successfully", nil)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), userIDFromCtx(c))
	if err != nil {
		if err == service.ErrUserNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
			return
		}
		writeError(c, err)
		return
	}
	ok(c, "ok", user)
}
