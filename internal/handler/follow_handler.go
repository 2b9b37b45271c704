package handler

import (
	"Community_Graph/internal/model"
	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

// edge 解析 /members/:member_id/xxx/:other 两个路径参数
func edge(c *gin.Context, other string) (actor, target uint64, valid bool) {
	if actor, valid = pathID(c, "member_id"); !valid {
		return
	}
	target, valid = pathID(c, other)
	return
}

// Follow 关注，私密成员返回待处理请求
func (h *FollowHandler) Follow(c *gin.Context) {
	actor, target, valid := edge(c, "following_id")
	if !valid {
		return
	}
	f, err := h.svc.RequestFollow(c.Request.Context(), userIDFromCtx(c), actor, target)
	if err != nil {
		writeError(c, err)
		return
	}
	msg := "follow succeeded"
	if f.Status == model.FollowPending {
		msg = "follow request sent"
	}
	created(c, msg, f)
}

// Unfollow 取消关注或撤回请求
func (h *FollowHandler) Unfollow(c *gin.Context) {
	actor, target, valid := edge(c, "following_id")
	if !valid {
		return
	}
	outcome, err := h.svc.Cancel(c.Request.Context(), userIDFromCtx(c), actor, target)
	if err != nil {
		writeError(c, err)
		return
	}
	if outcome == service.RequestCancelled {
		ok(c, "follow request cancelled", nil)
		return
	}
	ok(c, "unfollow succeeded", nil)
}

// Accept 通过关注请求
func (h *FollowHandler) Accept(c *gin.Context) {
	actor, follower, valid := edge(c, "follower_id")
	if !valid {
		return
	}
	f, err := h.svc.AcceptRequest(c.Request.Context(), userIDFromCtx(c), actor, follower)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "follow request accepted", f)
}

// RemoveFollower 移除粉丝或拒绝请求
func (h *FollowHandler) RemoveFollower(c *gin.Context) {
	actor, follower, valid := edge(c, "follower_id")
	if !valid {
		return
	}
	removed, err := h.svc.DeleteFollower(c.Request.Context(), userIDFromCtx(c), actor, follower)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "follower removed", gin.H{"changed": removed})
}

func (h *FollowHandler) Block(c *gin.Context) {
	actor, target, valid := edge(c, "block_id")
	if !valid {
		return
	}
	f, err := h.svc.Block(c.Request.Context(), userIDFromCtx(c), actor, target)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "block succeeded", f)
}

func (h *FollowHandler) Unblock(c *gin.Context) {
	actor, target, valid := edge(c, "block_id")
	if !valid {
		return
	}
	if err := h.svc.Unblock(c.Request.Context(), userIDFromCtx(c), actor, target); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "unblock succeeded", nil)
}

// ListFollowers 获取粉丝列表
func (h *FollowHandler) ListFollowers(c *gin.Context) {
	id, valid := pathID(c, "member_id")
	if !valid {
		return
	}
	cursor, limit := cursorQuery(c)
	rows, next, err := h.svc.ListFollowers(c.Request.Context(), userIDFromCtx(c), id, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	page(c, rows, next)
}

// ListFollowings 获取关注列表
func (h *FollowHandler) ListFollowings(c *gin.Context) {
	id, valid := pathID(c, "member_id")
	if !valid {
		return
	}
	cursor, limit := cursorQuery(c)
	rows, next, err := h.svc.ListFollowings(c.Request.Context(), userIDFromCtx(c), id, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	page(c, rows, next)
}

func (h *FollowHandler) ListBlocks(c *gin.Context) {
	id, valid := pathID(c, "member_id")
	if !valid {
		return
	}
	cursor, limit := cursorQuery(c)
	rows, next, err := h.svc.ListBlocks(c.Request.Context(), userIDFromCtx(c), id, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	page(c, rows, next)
}
