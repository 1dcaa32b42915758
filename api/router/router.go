package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson"

	"inkpress/api/auth"
	"inkpress/api/handlers"
	"inkpress/api/middleware"
	"inkpress/db"
	_ "inkpress/docs"
	"inkpress/eventbus"
	"inkpress/media"
	"inkpress/repositories"
	"inkpress/services"
)

// Deps carries the externally constructed collaborators.
type Deps struct {
	JWT   *auth.JWTManager
	Media media.Store
	Bus   eventbus.Bus
}

// healthHandler reports readiness based on a database ping. The ping is
// bounded so a wedged connection pool cannot hang the probe.
func healthHandler(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging())

	// Health check
	r.GET("/health", healthHandler(func(ctx context.Context) error {
		return db.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	postRepo := repositories.NewPostRepository(db.Database())
	commentRepo := repositories.NewCommentRepository(db.Database())
	postSvc := services.NewPostService(postRepo, commentRepo, deps.Media, deps.Bus)
	commentSvc := services.NewCommentService(commentRepo, postRepo, deps.Bus)

	// v1 routes
	api := r.Group("/api/v1")
	{
		posts := api.Group("/posts")
		{
			posts.GET("", middleware.OptionalAuth(deps.JWT), handlers.ListPostsHandler(postSvc))
			posts.GET("/slug/:slug", middleware.OptionalAuth(deps.JWT), handlers.GetPostBySlugHandler(postSvc))
			posts.GET("/:id", middleware.OptionalAuth(deps.JWT), handlers.GetPostHandler(postSvc))
			posts.POST("", middleware.RequireAuth(deps.JWT), handlers.CreatePostHandler(postSvc))
			posts.PUT("/:id", middleware.RequireAuth(deps.JWT), handlers.UpdatePostHandler(postSvc))
			posts.DELETE("/:id", middleware.RequireAuth(deps.JWT), handlers.DeletePostHandler(postSvc))
			posts.POST("/:id/like", middleware.RequireAuth(deps.JWT), handlers.TogglePostLikeHandler(postSvc))
		}

		comments := api.Group("/comments")
		{
			comments.GET("/post/:postId", middleware.OptionalAuth(deps.JWT), handlers.ListCommentsByPostHandler(commentSvc))
			comments.POST("", middleware.RequireAuth(deps.JWT), handlers.CreateCommentHandler(commentSvc))
			comments.PUT("/:id", middleware.RequireAuth(deps.JWT), handlers.UpdateCommentHandler(commentSvc))
			comments.DELETE("/:id", middleware.RequireAuth(deps.JWT), handlers.DeleteCommentHandler(commentSvc))
			comments.POST("/:id/like", middleware.RequireAuth(deps.JWT), handlers.ToggleCommentLikeHandler(commentSvc))
			comments.PUT("/:id/moderate", middleware.RequireAuth(deps.JWT), middleware.RequireAdmin(), handlers.ModerateCommentHandler(commentSvc))
		}

		images := api.Group("/images", middleware.RequireAuth(deps.JWT))
		{
			images.POST("", handlers.UploadImageHandler(deps.Media))
			images.DELETE("/*publicId", handlers.DeleteImageHandler(deps.Media))
		}
	}

	return r
}
