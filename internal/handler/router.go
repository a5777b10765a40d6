package handler

import (
	"github.com/gin-gonic/gin"

	"pollroom/internal/config"
	"pollroom/internal/middleware"
	"pollroom/internal/realtime"
	"pollroom/internal/services"
	"pollroom/pkg/logger"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Config   *config.Config
	Log      *logger.Logger
	Auth     *services.AuthService
	Polls    *services.PollService
	Votes    *services.VoteService
	Comments *services.CommentService
	WS       *realtime.Handler
	Limiter  middleware.Limiter
}

// NewRouter assembles the middleware chain and the route table.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SessionAuth(deps.Auth, deps.Config.Auth.SessionCookie))
	r.Use(middleware.RequestLogging(deps.Log))

	authHandler := NewAuthHandler(deps.Auth, deps.Config.Auth.SessionCookie)
	pollHandler := NewPollHandler(deps.Polls)
	voteHandler := NewVoteHandler(deps.Votes)
	commentHandler := NewCommentHandler(deps.Comments)

	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", authHandler.SignUp)
		auth.POST("/sign-in", authHandler.SignIn)
		auth.GET("/oauth/:provider", authHandler.OAuth)
		auth.GET("/callback", authHandler.Callback)
		auth.POST("/sign-out", authHandler.SignOut)
	}

	polls := r.Group("/polls")
	{
		polls.GET("", pollHandler.List)
		polls.GET("/:id", pollHandler.Get)

		mutating := polls.Group("")
		if deps.Limiter != nil {
			mutating.Use(middleware.RateLimit(deps.Limiter))
		}
		mutating.POST("", pollHandler.Create)
		mutating.POST("/delete", pollHandler.Delete)
		mutating.POST("/:id/update", pollHandler.Update)
		mutating.POST("/:id/vote", voteHandler.Submit)
		mutating.POST("/:id/comments", commentHandler.Create)
	}

	if deps.WS != nil {
		r.GET("/ws/polls/:id", deps.WS.Connect)
	}

	return r
}
