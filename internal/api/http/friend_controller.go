package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ideameet/backend/internal/api/http/converter"
	"github.com/ideameet/backend/internal/auth"
	"github.com/ideameet/backend/internal/domain"
	"github.com/ideameet/backend/internal/service"
)

type FriendController struct {
	friends service.FriendInteractor
}

func NewFriendController(friends service.FriendInteractor) *FriendController {
	return &FriendController{friends: friends}
}

func (c *FriendController) RequestFriendship(ctx *gin.Context) {
	targetID, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	req, err := c.friends.RequestFriendship(ctx.Request.Context(), auth.CurrentUserID(ctx), targetID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"request": req})
}

// AcceptFriendship accepts the pending request that userID sent to the
// caller.
func (c *FriendController) AcceptFriendship(ctx *gin.Context) {
	requesterID, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := c.friends.AcceptFriendship(ctx.Request.Context(), requesterID, auth.CurrentUserID(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CancelFriendshipRequest withdraws the caller's own request or declines one
// addressed to them, whichever exists with userID.
func (c *FriendController) CancelFriendshipRequest(ctx *gin.Context) {
	otherID, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := c.friends.CancelFriendshipRequest(ctx.Request.Context(), auth.CurrentUserID(ctx), otherID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *FriendController) ListRequesters(ctx *gin.Context) {
	c.listProfiles(ctx, c.friends.ListRequesters)
}

func (c *FriendController) ListRequested(ctx *gin.Context) {
	c.listProfiles(ctx, c.friends.ListRequested)
}

func (c *FriendController) CountRequests(ctx *gin.Context) {
	userID := auth.CurrentUserID(ctx)

	requesters, err := c.friends.CountRequesters(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	requested, err := c.friends.CountRequested(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"requesters": requesters, "requested": requested})
}

func (c *FriendController) ListFriends(ctx *gin.Context) {
	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}
	p = p.Normalized()

	entries, total, err := c.friends.ListFriends(ctx.Request.Context(), auth.CurrentUserID(ctx), p)
	if err != nil {
		respondError(ctx, err)
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		items = append(items, gin.H{
			"profile":  converter.ProfileToApi(e.Profile),
			"isOnline": e.IsOnline,
		})
	}
	ctx.JSON(http.StatusOK, converter.Paginated{Items: items, Total: total, Page: p.Page, Take: p.Take})
}

func (c *FriendController) Unfriend(ctx *gin.Context) {
	friendID, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := c.friends.Unfriend(ctx.Request.Context(), auth.CurrentUserID(ctx), friendID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type profileLister func(ctx context.Context, userID uuid.UUID, p domain.Pagination) ([]*domain.Profile, int64, error)

func (c *FriendController) listProfiles(ctx *gin.Context, list profileLister) {
	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}
	p = p.Normalized()

	profiles, total, err := list(ctx.Request.Context(), auth.CurrentUserID(ctx), p)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, converter.Paginated{
		Items: converter.ProfilesToApi(profiles),
		Total: total,
		Page:  p.Page,
		Take:  p.Take,
	})
}
