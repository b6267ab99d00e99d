package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ideameet/backend/internal/service"
)

// respondError maps service errors onto HTTP statuses. Anything unrecognized
// is a 500 with a generic body so internals never leak to the client.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrFriendRequestNotFound),
		errors.Is(err, service.ErrFriendshipNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserOffline),
		errors.Is(err, service.ErrAlreadyInCall),
		errors.Is(err, service.ErrNotInCall),
		errors.Is(err, service.ErrIsCaller),
		errors.Is(err, service.ErrFriendRequestExists),
		errors.Is(err, service.ErrCannotBefriendSelf),
		errors.Is(err, service.ErrNotGroupMember),
		errors.Is(err, service.ErrTooManyGroups):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
