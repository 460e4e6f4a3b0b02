package routes

import (
	"github.com/edupath/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupCommentRoutes(public *gin.RouterGroup, commentController *controllers.CommentController) {
	comments := public.Group("/comments")
	{
		comments.GET("", commentController.ListComments)
		comments.GET("/:id/thread", commentController.GetSubtree)
	}
}

func SetupProtectedCommentRoutes(protected *gin.RouterGroup, commentController *controllers.CommentController) {
	comments := protected.Group("/comments")
	{
		comments.POST("", commentController.CreateComment)
		comments.PUT("/:id", commentController.UpdateComment)
		comments.DELETE("/:id", commentController.DeleteComment)
		comments.POST("/:id/vote", commentController.VoteComment)
		comments.DELETE("/:id/vote", commentController.UnvoteComment)
	}
}
