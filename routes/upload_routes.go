package routes

import (
	"github.com/edupath/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUploadRoutes(protected *gin.RouterGroup, uploadController *controllers.UploadController) {
	uploads := protected.Group("/uploads")
	{
		uploads.POST("/hub-banner", uploadController.GetHubBannerUploadURL)
	}
}
