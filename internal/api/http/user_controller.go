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

type UserController struct {
	users service.UserInteractor
}

func NewUserController(users service.UserInteractor) *UserController {
	return &UserController{users: users}
}

func (c *UserController) Me(ctx *gin.Context) {
	user, err := c.users.GetProfile(ctx.Request.Context(), auth.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": converter.UserToApi(user)})
}

func (c *UserController) UpdateProfile(ctx *gin.Context) {
	type UpdateProfileRequest struct {
		FullName    *string `json:"fullName"`
		AvatarURL   *string `json:"avatarUrl"`
		Gender      *string `json:"gender"`
		PhoneNumber *string `json:"phoneNumber"`
	}
	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	var gender *domain.UserGender
	if req.Gender != nil {
		switch *req.Gender {
		case string(domain.UserGenderMale), string(domain.UserGenderFemale):
			g := domain.UserGender(*req.Gender)
			gender = &g
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid gender"})
			return
		}
	}

	profile, err := c.users.UpdateProfile(ctx.Request.Context(), &domain.Profile{
		UserID:      auth.CurrentUserID(ctx),
		FullName:    req.FullName,
		AvatarURL:   req.AvatarURL,
		Gender:      gender,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"profile": converter.ProfileToApi(profile)})
}

func (c *UserController) GetUser(ctx *gin.Context) {
	targetID, err := uuid.Parse(ctx.Param("userID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	overview, err := c.users.GetUserOverview(ctx.Request.Context(), auth.CurrentUserID(ctx), targetID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"profile":                 converter.ProfileToApi(overview.Profile),
		"isOnline":                overview.IsOnline,
		"isFriendship":            overview.IsFriendship,
		"friendshipRequestFromMe": overview.FriendshipRequestFromMe,
		"friendshipRequestToMe":   overview.FriendshipRequestToMe,
		"directMessageChannelId":  overview.DirectChannelID,
	})
}

// ListUsers searches users by name. notInGroupId narrows the result to users
// outside that group so the invite picker only offers candidates.
func (c *UserController) ListUsers(ctx *gin.Context) {
	var p domain.Pagination
	if err := ctx.ShouldBindQuery(&p); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
		return
	}

	var notInGroupID *uuid.UUID
	if raw := ctx.Query("notInGroupId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
			return
		}
		notInGroupID = &id
	}

	p = p.Normalized()
	profiles, total, err := c.users.ListUsers(ctx.Request.Context(), auth.CurrentUserID(ctx), ctx.Query("keyword"), notInGroupID, p)
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
