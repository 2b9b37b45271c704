package handler

import (
	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	svc *service.MemberService
}

func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// Profile 成员主页，私密成员只对已关注者可见
func (h *MemberHandler) Profile(c *gin.Context) {
	id, valid := pathID(c, "member_id")
	if !valid {
		return
	}
	view, err := h.svc.GetProfile(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", view)
}

func (h *MemberHandler) Update(c *gin.Context) {
	id, valid := pathID(c, "member_id")
	if !valid {
		return
	}
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}
	member, err := h.svc.UpdateProfile(c.Request.Context(), userIDFromCtx(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "profile updated", member)
}

// Leave 退出社区，成员的内容和关系一并清理
func (h *MemberHandler) Leave(c *gin.Context) {
	id, valid := pathID(c, "member_id")
	if !valid {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), userIDFromCtx(c), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "left community", nil)
}
