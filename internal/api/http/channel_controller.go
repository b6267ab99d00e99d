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

// ChannelController serves the REST side of chat: conversation listings and
// message history. Mutations travel over the socket gateway instead.
type ChannelController struct {
	channels service.ChannelInteractor
	messages service.MessageInteractor
}

func NewChannelController(channels service.ChannelInteractor, messages service.MessageInteractor) *ChannelController {
	return &ChannelController{channels: channels, messages: messages}
}

func (c *ChannelController) ListDirectChannels(ctx *gin.Context) {
	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}
	p = p.Normalized()

	entries, total, err := c.channels.ListDirectChannels(ctx.Request.Context(), auth.CurrentUserID(ctx), p)
	if err != nil {
		respondError(ctx, err)
		return
	}

	items := make([]*converter.DirectChannelResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, converter.DirectChannelToApi(e))
	}
	ctx.JSON(http.StatusOK, converter.Paginated{Items: items, Total: total, Page: p.Page, Take: p.Take})
}

func (c *ChannelController) ListDirectMessages(ctx *gin.Context) {
	c.listMessages(ctx, c.messages.ListDirectMessages)
}

func (c *ChannelController) ListGroupMessages(ctx *gin.Context) {
	c.listMessages(ctx, c.messages.ListGroupMessages)
}

type messageLister func(ctx context.Context, userID, channelID uuid.UUID, p domain.Pagination) ([]*domain.Message, int64, error)

func (c *ChannelController) listMessages(ctx *gin.Context, list messageLister) {
	channelID, err := uuid.Parse(ctx.Param("channelID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}
	p = p.Normalized()

	messages, total, err := list(ctx.Request.Context(), auth.CurrentUserID(ctx), channelID, p)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, converter.Paginated{
		Items: converter.MessagesToApi(messages),
		Total: total,
		Page:  p.Page,
		Take:  p.Take,
	})
}
