package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ideameet/backend/internal/api/http/converter"
	"github.com/ideameet/backend/internal/service"
)

type AuthController struct {
	auth service.AuthInteractor
}

func NewAuthController(auth service.AuthInteractor) *AuthController {
	return &AuthController{auth: auth}
}

func (c *AuthController) SignInWithGoogle(ctx *gin.Context) {
	type GoogleSignInRequest struct {
		Code string `json:"code" binding:"required"`
	}
	var req GoogleSignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := c.auth.SignInWithGoogle(ctx.Request.Context(), req.Code)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, authResultToApi(result))
}

// SignInWithFacebook takes the client-side Facebook access token, either as
// a bearer header or as the access_token query parameter the login redirect
// flow produces.
func (c *AuthController) SignInWithFacebook(ctx *gin.Context) {
	accessToken := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
	if accessToken == "" || accessToken == ctx.GetHeader("Authorization") {
		accessToken = ctx.Query("access_token")
	}
	if accessToken == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "access_token is required"})
		return
	}

	result, err := c.auth.SignInWithFacebook(ctx.Request.Context(), accessToken)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, authResultToApi(result))
}

func (c *AuthController) RefreshToken(ctx *gin.Context) {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	var req RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := c.auth.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, authResultToApi(result))
}

func authResultToApi(result *service.AuthResult) gin.H {
	return gin.H{
		"user":         converter.UserToApi(result.User),
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}
}
