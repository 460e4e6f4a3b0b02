package routes

import (
	"github.com/edupath/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupHubRoutes(public *gin.RouterGroup, hubController *controllers.HubController) {
	hubs := public.Group("/hubs")
	{
		hubs.GET("", hubController.ListHubs)
		hubs.GET("/:id", hubController.GetHub)
		hubs.GET("/:id/overview", hubController.GetOverview)
		hubs.GET("/:id/recent-posts", hubController.GetRecentPosts)
	}
}

func SetupProtectedHubRoutes(protected *gin.RouterGroup, hubController *controllers.HubController) {
	hubs := protected.Group("/hubs")
	{
		hubs.POST("/:id/join", hubController.JoinHub)
		hubs.POST("/:id/leave", hubController.LeaveHub)
	}
}
