package routes

import (
	"habitstracker/controllers"
	"habitstracker/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRouter(ctl *controllers.Controller) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", ctl.Register)
		auth.POST("/login", ctl.Login)
	}

	// Protected routes
	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/auth/signout", ctl.SignOut)

		api.GET("/user/profile", ctl.GetProfile)
		api.PUT("/user/field", ctl.ModifyUserField)
		api.PUT("/user/username", ctl.SetUsername)
		api.PUT("/user/picture", ctl.SetProfilePicture)
		api.DELETE("/user", ctl.DeleteAccount)

		api.POST("/friends/requests", ctl.AddRequest)
		api.GET("/friends/requests", ctl.GetRequests)
		api.POST("/friends/confirm", ctl.ConfirmFriend)
		api.GET("/friends", ctl.ListFriends)
		api.GET("/friends/:id/status", ctl.GetFriendStatus)
		api.DELETE("/friends/:id", ctl.RemoveFriend)

		api.PUT("/scores/today", ctl.UpdateDailyScores)
		api.POST("/activities", ctl.LogActivity)
		api.GET("/activities/catalog", ctl.GetActivityCatalog)

		api.GET("/leaderboard", ctl.GetLeaderboard)

		api.POST("/devices", ctl.RegisterDevice)
		api.GET("/ws", ctl.EventsWS)
	}

	return r
}
