package handler

import (
	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// Create 管理员在社区下新建分类
func (h *CategoryHandler) Create(c *gin.Context) {
	communityID, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), userIDFromCtx(c), communityID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, "category created", category)
}

func (h *CategoryHandler) List(c *gin.Context) {
	communityID, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	list, err := h.svc.ListCategories(c.Request.Context(), communityID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", list)
}

func (h *CategoryHandler) Favorite(c *gin.Context) {
	toggleOn(c, "category_id", h.svc.FavoriteCategory, "favorite added")
}

func (h *CategoryHandler) Unfavorite(c *gin.Context) {
	toggleOn(c, "category_id", h.svc.UnfavoriteCategory, "favorite removed")
}
