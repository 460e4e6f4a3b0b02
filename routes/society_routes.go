package routes

import (
	"github.com/edupath/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupSocietyRoutes(public *gin.RouterGroup, societyController *controllers.SocietyController) {
	societies := public.Group("/societies")
	{
		societies.GET("", societyController.ListSocieties)
		societies.GET("/:id", societyController.GetSociety)
	}

	posts := public.Group("/society-posts")
	{
		posts.GET("", societyController.ListSocietyPosts)
	}
}

func SetupProtectedSocietyRoutes(protected *gin.RouterGroup, societyController *controllers.SocietyController) {
	posts := protected.Group("/society-posts")
	{
		posts.POST("", societyController.CreateSocietyPost)
		posts.PUT("/:id", societyController.UpdateSocietyPost)
		posts.DELETE("/:id", societyController.DeleteSocietyPost)
		posts.POST("/:id/vote", societyController.VoteSocietyPost)
		posts.DELETE("/:id/vote", societyController.UnvoteSocietyPost)
	}
}
