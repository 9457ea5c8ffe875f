package router

import (
	"clipstream/internal/api/handler"
	"clipstream/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup registers all business routes.
func Setup(
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	relationHandler *handler.RelationHandler,
	videoHandler *handler.VideoHandler,
	favoriteHandler *handler.FavoriteHandler,
	searchHandler *handler.SearchHandler,
	adminMiddleware gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		authRequired := auth.Group("", middleware.AuthRequired())
		{
			authRequired.POST("/logout", authHandler.Logout)
			authRequired.GET("/me", authHandler.Me)
		}
	}

	users := v1.Group("/users", middleware.AuthRequired())
	{
		users.GET("/me", userHandler.GetMe)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.GET("/:id/videos", videoHandler.GetUserVideos)

		admin := users.Group("", adminMiddleware)
		{
			admin.GET("", userHandler.ListUsers)
			admin.DELETE("/:id", userHandler.DeleteUser)
			admin.POST("/:id/restore", userHandler.RestoreUser)
			admin.POST("/:id/set-admin", userHandler.SetAdmin)
		}
	}

	relations := v1.Group("/relations", middleware.AuthRequired())
	{
		relations.POST("/follow/:id", relationHandler.Follow)
		relations.POST("/unfollow/:id", relationHandler.Unfollow)

		relations.GET("/following/:id", relationHandler.GetFollowing)
		relations.GET("/followers/:id", relationHandler.GetFollowers)
		relations.GET("/following/:id/status", relationHandler.GetFollowStatus)

		relations.GET("/following/my/list", relationHandler.GetMyFollowing)
		relations.GET("/followers/my/list", relationHandler.GetMyFollowers)
		relations.GET("/mutual", relationHandler.GetMutualFollows)

		relations.POST("/batch/status", relationHandler.BatchFollowStatus)
	}

	videos := v1.Group("/videos")
	{
		// Public, no login required.
		videos.GET("/feed", videoHandler.GetFeed)

		videosAuth := videos.Group("", middleware.AuthRequired())
		{
			videosAuth.POST("/upload", videoHandler.Upload)
			videosAuth.GET("/my/list", videoHandler.GetMyVideos)
			videosAuth.GET("/:id", videoHandler.GetDetail)
			videosAuth.PUT("/:id", videoHandler.UpdateVideo)
			videosAuth.DELETE("/:id", videoHandler.DeleteVideo)
		}
	}

	favorites := v1.Group("/favorites", middleware.AuthRequired())
	{
		favorites.POST("/:video_id", favoriteHandler.Favorite)
		favorites.DELETE("/:video_id", favoriteHandler.Unfavorite)
		favorites.GET("/:video_id/status", favoriteHandler.GetStatus)
		favorites.GET("/my/list", favoriteHandler.ListMyFavorites)
		favorites.POST("/batch/status", favoriteHandler.BatchStatus)
	}

	search := v1.Group("/search")
	{
		search.GET("/videos", searchHandler.SearchVideos)
		search.GET("/users", searchHandler.SearchUsers)
	}
}
