package routes

import (
	"github.com/edupath/api-go/controllers"
	"github.com/edupath/api-go/middleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize controllers
	authController := controllers.NewAuthController(db)
	hubController := controllers.NewHubController(db)
	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	societyController := controllers.NewSocietyController(db)
	uploadController := controllers.NewUploadController(db)

	// Public routes; OptionalAuth lets reads annotate the caller's vote
	// and membership state when a token is present.
	public := r.Group("/api")
	public.Use(middleware.OptionalAuth())
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/refresh-token", authController.RefreshToken)
		public.POST("/auth/google", authController.GoogleLogin)

		SetupHubRoutes(public, hubController)
		SetupPostRoutes(public, postController, commentController)
		SetupCommentRoutes(public, commentController)
		SetupSocietyRoutes(public, societyController)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", authController.Logout)
		protected.GET("/profile", authController.GetProfile)
		protected.PUT("/profile", authController.UpdateProfile)

		SetupProtectedHubRoutes(protected, hubController)
		SetupProtectedPostRoutes(protected, postController)
		SetupProtectedCommentRoutes(protected, commentController)
		SetupProtectedSocietyRoutes(protected, societyController)
		SetupUploadRoutes(protected, uploadController)
	}
}
