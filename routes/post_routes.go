package routes

import (
	"github.com/edupath/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupPostRoutes(public *gin.RouterGroup, postController *controllers.PostController, commentController *controllers.CommentController) {
	posts := public.Group("/posts")
	{
		posts.GET("", postController.ListPosts)
		posts.GET("/:id", postController.GetPost)
		posts.GET("/:id/thread", commentController.GetThread)
	}
}

func SetupProtectedPostRoutes(protected *gin.RouterGroup, postController *controllers.PostController) {
	posts := protected.Group("/posts")
	{
		posts.POST("", postController.CreatePost)
		posts.PUT("/:id", postController.UpdatePost)
		posts.DELETE("/:id", postController.DeletePost)
		posts.POST("/:id/vote", postController.VotePost)
		posts.DELETE("/:id/vote", postController.UnvotePost)
	}
}
