package handler

import (
	"context"

	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
)

// toggleFunc 点赞、收藏一类的幂等开关操作
type toggleFunc func(ctx context.Context, userID, targetID uint64) (bool, error)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	postID, valid := pathID(c, "post_id")
	if !valid {
		return
	}
	var req service.CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}
	comment, err := h.svc.CreateComment(c.Request.Context(), userIDFromCtx(c), postID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, "comment created", comment)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, valid := pathID(c, "post_id")
	if !valid {
		return
	}
	list, err := h.svc.ListComments(c.Request.Context(), userIDFromCtx(c), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", list)
}

// DeleteComment 有回复的评论只清空内容
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, valid := pathID(c, "comment_id")
	if !valid {
		return
	}
	soft, err := h.svc.DeleteComment(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "comment deleted", gin.H{"soft_deleted": soft})
}

func (h *CommentHandler) CreateReply(c *gin.Context) {
	commentID, valid := pathID(c, "comment_id")
	if !valid {
		return
	}
	var req service.CommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}
	reply, err := h.svc.CreateReply(c.Request.Context(), userIDFromCtx(c), commentID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, "reply created", reply)
}

func (h *CommentHandler) ListReplies(c *gin.Context) {
	commentID, valid := pathID(c, "comment_id")
	if !valid {
		return
	}
	list, err := h.svc.ListReplies(c.Request.Context(), userIDFromCtx(c), commentID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", list)
}

func (h *CommentHandler) DeleteReply(c *gin.Context) {
	id, valid := pathID(c, "reply_id")
	if !valid {
		return
	}
	if err := h.svc.DeleteReply(c.Request.Context(), userIDFromCtx(c), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "reply deleted", nil)
}

func (h *CommentHandler) LikeComment(c *gin.Context) {
	toggleOn(c, "comment_id", h.svc.LikeComment, "like added")
}

func (h *CommentHandler) UnlikeComment(c *gin.Context) {
	toggleOn(c, "comment_id", h.svc.UnlikeComment, "like removed")
}

func (h *CommentHandler) LikeReply(c *gin.Context) {
	toggleOn(c, "reply_id", h.svc.LikeReply, "like added")
}

func (h *CommentHandler) UnlikeReply(c *gin.Context) {
	toggleOn(c, "reply_id", h.svc.UnlikeReply, "like removed")
}

func toggleOn(c *gin.Context, param string, op toggleFunc, msg string) {
	id, valid := pathID(c, param)
	if !valid {
		return
	}
	changed, err := op(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, msg, gin.H{"changed": changed})
}
