package handler

import (
	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc *service.PostService
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// CreatePost 在分类下发帖
func (h *PostHandler) CreatePost(c *gin.Context) {
	categoryID, valid := pathID(c, "category_id")
	if !valid {
		return
	}
	var req service.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), userIDFromCtx(c), categoryID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, "post created", post)
}

// ListByCategory 分类下的帖子，按 id 游标倒序
func (h *PostHandler) ListByCategory(c *gin.Context) {
	categoryID, valid := pathID(c, "category_id")
	if !valid {
		return
	}
	cursor, limit := cursorQuery(c)
	list, next, err := h.svc.ListPosts(c.Request.Context(), userIDFromCtx(c), categoryID, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	page(c, list, next)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, valid := pathID(c, "post_id")
	if !valid {
		return
	}
	view, err := h.svc.GetPost(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", view)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, valid := pathID(c, "post_id")
	if !valid {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), userIDFromCtx(c), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "post deleted", nil)
}

// ListScraps 成员收藏的帖子
func (h *PostHandler) ListScraps(c *gin.Context) {
	id, valid := pathID(c, "member_id")
	if !valid {
		return
	}
	cursor, limit := cursorQuery(c)
	list, next, err := h.svc.ListScraps(c.Request.Context(), userIDFromCtx(c), id, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	page(c, list, next)
}

func (h *PostHandler) Like(c *gin.Context) {
	h.toggle(c, h.svc.LikePost, "like added")
}

func (h *PostHandler) Unlike(c *gin.Context) {
	h.toggle(c, h.svc.UnlikePost, "like removed")
}

func (h *PostHandler) Scrap(c *gin.Context) {
	h.toggle(c, h.svc.ScrapPost, "scrap added")
}

func (h *PostHandler) Unscrap(c *gin.Context) {
	h.toggle(c, h.svc.UnscrapPost, "scrap removed")
}

func (h *PostHandler) toggle(c *gin.Context, op toggleFunc, msg string) {
	toggleOn(c, "post_id", op, msg)
}
