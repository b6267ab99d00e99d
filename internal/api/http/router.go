package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ideameet/backend/internal/auth"
	"github.com/ideameet/backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Controllers struct {
	Auth    *AuthController
	User    *UserController
	Friend  *FriendController
	Group   *GroupController
	Channel *ChannelController
	Gateway *Gateway
}

func SetupRouter(tokens *auth.TokenManager, allowedOrigins []string, c Controllers) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))
	router.Use(metrics.GinMiddleware())

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	authn := api.Group("/auth")
	authn.POST("/google", c.Auth.SignInWithGoogle)
	authn.GET("/facebook", c.Auth.SignInWithFacebook)
	authn.POST("/refresh-token", c.Auth.RefreshToken)

	// The gateway authenticates the handshake itself so tokens can travel
	// in the query string.
	api.GET("/ws", c.Gateway.Connect)

	protected := api.Group("")
	protected.Use(auth.Middleware(tokens))

	users := protected.Group("/users")
	users.GET("/me", c.User.Me)
	users.PUT("/me/profile", c.User.UpdateProfile)
	users.GET("", c.User.ListUsers)
	users.GET("/:userID", c.User.GetUser)

	friends := protected.Group("/friends")
	friends.POST("/requests/:userID", c.Friend.RequestFriendship)
	friends.POST("/requests/:userID/accept", c.Friend.AcceptFriendship)
	friends.DELETE("/requests/:userID", c.Friend.CancelFriendshipRequest)
	friends.GET("/requests/incoming", c.Friend.ListRequesters)
	friends.GET("/requests/outgoing", c.Friend.ListRequested)
	friends.GET("/requests/count", c.Friend.CountRequests)
	friends.GET("", c.Friend.ListFriends)
	friends.DELETE("/:userID", c.Friend.Unfriend)

	groups := protected.Group("/groups")
	groups.POST("", c.Group.CreateGroup)
	groups.GET("", c.Group.ListJoined)
	groups.POST("/join/:code", c.Group.JoinByInviteCode)
	groups.GET("/:groupID", c.Group.GetGroup)
	groups.PUT("/:groupID", c.Group.UpdateGroup)
	groups.POST("/:groupID/invite-code", c.Group.RegenerateInviteCode)
	groups.GET("/:groupID/members", c.Group.ListMembers)
	groups.DELETE("/:groupID/members/:userID", c.Group.RemoveMember)
	groups.POST("/:groupID/leave", c.Group.LeaveGroup)
	groups.POST("/:groupID/channels", c.Group.CreateChannel)
	groups.GET("/:groupID/channels", c.Group.ListChannels)
	groups.PUT("/:groupID/channels/:channelID", c.Group.UpdateChannel)
	groups.DELETE("/:groupID/channels/:channelID", c.Group.DeleteChannel)

	channels := protected.Group("/channels")
	channels.GET("/direct", c.Channel.ListDirectChannels)
	channels.GET("/direct/:channelID/messages", c.Channel.ListDirectMessages)
	channels.GET("/group/:channelID/messages", c.Channel.ListGroupMessages)

	return router
}
