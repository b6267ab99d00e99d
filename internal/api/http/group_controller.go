package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/api/http/converter"
	"github.com/ideameet/backend/internal/auth"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/service"
)

type GroupController struct {
	groups   service.GroupInteractor
	channels service.ChannelInteractor
}

func NewGroupController(groups service.GroupInteractor, channels service.ChannelInteractor) *GroupController {
	return &GroupController{groups: groups, channels: channels}
}

func (c *GroupController) CreateGroup(ctx *gin.Context) {
	type CreateGroupRequest struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	var req CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	group, err := c.groups.CreateGroup(ctx.Request.Context(), auth.CurrentUserID(ctx), req.Name, req.Description)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"group": converter.GroupToApi(group)})
}

func (c *GroupController) GetGroup(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	overview, err := c.groups.GetGroup(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"group":        converter.GroupToApi(overview.Group),
		"memberCount":  overview.MemberCount,
		"channelCount": overview.ChannelCount,
	})
}

func (c *GroupController) UpdateGroup(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	type UpdateGroupRequest struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	var req UpdateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	group, err := c.groups.UpdateGroup(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID, req.Name, req.Description)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"group": converter.GroupToApi(group)})
}

func (c *GroupController) RegenerateInviteCode(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := c.groups.RegenerateInviteCode(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"inviteCode": group.InviteCode})
}

func (c *GroupController) JoinByInviteCode(ctx *gin.Context) {
	code := ctx.Param("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invite code is required"})
		return
	}

	group, err := c.groups.JoinByInviteCode(ctx.Request.Context(), auth.CurrentUserID(ctx), code)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"group": converter.GroupToApi(group)})
}

func (c *GroupController) ListJoined(ctx *gin.Context) {
	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}
	p = p.Normalized()

	groups, total, err := c.groups.ListJoined(ctx.Request.Context(), auth.CurrentUserID(ctx), p)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, converter.Paginated{
		Items: converter.GroupsToApi(groups),
		Total: total,
		Page:  p.Page,
		Take:  p.Take,
	})
}

func (c *GroupController) ListMembers(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}
	p = p.Normalized()

	members, total, err := c.groups.ListMembers(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID, p)
	if err != nil {
		respondError(ctx, err)
		return
	}

	items := make([]gin.H, 0, len(members))
	for _, m := range members {
		items = append(items, gin.H{
			"profile":  converter.ProfileToApi(m.Profile),
			"isOnline": m.IsOnline,
			"isOwner":  m.IsOwner,
		})
	}
	ctx.JSON(http.StatusOK, converter.Paginated{Items: items, Total: total, Page: p.Page, Take: p.Take})
}

func (c *GroupController) RemoveMember(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	targetID, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := c.groups.RemoveMember(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID, targetID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	if err := c.groups.LeaveGroup(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *GroupController) CreateChannel(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	type CreateChannelRequest struct {
		Name string `json:"name" binding:"required"`
	}
	var req CreateChannelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	channel, err := c.channels.CreateGroupChannel(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID, req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"channel": converter.GroupChannelToApi(channel)})
}

func (c *GroupController) UpdateChannel(ctx *gin.Context) {
	groupID, channelID, ok := groupChannelIDs(ctx)
	if !ok {
		return
	}

	type UpdateChannelRequest struct {
		Name string `json:"name" binding:"required"`
	}
	var req UpdateChannelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	channel, err := c.channels.UpdateGroupChannel(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID, channelID, req.Name)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"channel": converter.GroupChannelToApi(channel)})
}

func (c *GroupController) DeleteChannel(ctx *gin.Context) {
	groupID, channelID, ok := groupChannelIDs(ctx)
	if !ok {
		return
	}

	if err := c.channels.DeleteGroupChannel(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID, channelID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *GroupController) ListChannels(ctx *gin.Context) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}
	p = p.Normalized()

	entries, total, err := c.channels.ListGroupChannels(ctx.Request.Context(), auth.CurrentUserID(ctx), groupID, p)
	if err != nil {
		respondError(ctx, err)
		return
	}

	items := make([]*converter.GroupChannelResponse, 0, len(entries))
	for _, e := range entries {
		resp := converter.GroupChannelToApi(e.Channel)
		resp.LastMessage = converter.MessageToApi(e.LastMessage)
		items = append(items, resp)
	}
	ctx.JSON(http.StatusOK, converter.Paginated{Items: items, Total: total, Page: p.Page, Take: p.Take})
}

func groupChannelIDs(ctx *gin.Context) (groupID, channelID uuid.UUID, ok bool) {
	groupID, err := uuid.Parse(ctx.Param("groupID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return uuid.Nil, uuid.Nil, false
	}
	channelID, err = uuid.Parse(ctx.Param("channelID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return uuid.Nil, uuid.Nil, false
	}
	return groupID, channelID, true
}
