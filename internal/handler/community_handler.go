package handler

import (
	"strconv"

	"Community_Graph/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc     *service.CommunityService
	members *service.MemberService
}

func NewCommunityHandler(svc *service.CommunityService, members *service.MemberService) *CommunityHandler {
	return &CommunityHandler{svc: svc, members: members}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req service.CommunityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParams(c, err)
		return
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), userIDFromCtx(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, "community created", community)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	community, err := h.svc.GetCommunity(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", community)
}

func (h *CommunityHandler) List(c *gin.Context) {
	pageNo, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListCommunities(c.Request.Context(), pageNo, size)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", list)
}

// Join 加入社区，成功返回新成员
func (h *CommunityHandler) Join(c *gin.Context) {
	id, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	var req service.JoinInput
	// 请求体可以为空，此时自动生成昵称
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badParams(c, err)
			return
		}
	}

	member, err := h.members.Join(c.Request.Context(), userIDFromCtx(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, "joined community", member)
}

// Me 当前用户在该社区的成员信息
func (h *CommunityHandler) Me(c *gin.Context) {
	id, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	member, err := h.members.GetFor(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", member)
}

func (h *CommunityHandler) Members(c *gin.Context) {
	id, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	cursor, limit := cursorQuery(c)
	list, next, err := h.members.ListMembers(c.Request.Context(), userIDFromCtx(c), id, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	page(c, list, next)
}

func (h *CommunityHandler) Favorite(c *gin.Context) {
	id, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	changed, err := h.svc.FavoriteCommunity(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "favorite added", gin.H{"changed": changed})
}

func (h *CommunityHandler) Unfavorite(c *gin.Context) {
	id, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	changed, err := h.svc.UnfavoriteCommunity(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "favorite removed", gin.H{"changed": changed})
}

func (h *CommunityHandler) IsFavorite(c *gin.Context) {
	id, valid := pathID(c, "community_id")
	if !valid {
		return
	}
	fav, err := h.svc.IsFavorite(c.Request.Context(), userIDFromCtx(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", gin.H{"is_favorite": fav})
}

func (h *CommunityHandler) MyFavorites(c *gin.Context) {
	list, err := h.svc.ListFavoriteCommunities(c.Request.Context(), userIDFromCtx(c))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", list)
}

func (h *CommunityHandler) MyMemberships(c *gin.Context) {
	list, err := h.members.ListMyMemberships(c.Request.Context(), userIDFromCtx(c))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, "ok", list)
}
