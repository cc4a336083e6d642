package routes

import (
	"log"

	"github.com/Framez/framez_backend/internal/config"
	"github.com/Framez/framez_backend/internal/controllers"
	"github.com/Framez/framez_backend/internal/middlewares"
	"github.com/Framez/framez_backend/internal/repository"
	"github.com/Framez/framez_backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter ルーターを設定
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// Ginルーターを作成
	r := gin.Default()

	// ミドルウェアを設定
	r.Use(middlewares.ErrorMiddleware())
	r.Use(middlewares.CORSMiddleware())

	// リポジトリを作成
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	// ストレージサービスを作成
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Fatalf("ストレージサービスの初期化に失敗しました: %v", err)
	}

	// アバターサービスを作成
	avatarService, err := services.NewAvatarService(cfg)
	if err != nil {
		log.Fatalf("アバターサービスの初期化に失敗しました: %v", err)
	}

	// サービスを作成
	identityService := services.NewIdentityService(cfg)
	userService := services.NewUserService(userRepo, avatarService)
	postService := services.NewPostService(postRepo, userRepo, storageService)

	// コントローラーを作成
	authController := controllers.NewAuthController(userService)
	userController := controllers.NewUserController(userService, postService)
	postController := controllers.NewPostController(postService)
	uploadController := controllers.NewUploadController(storageService)
	healthController := controllers.NewHealthController()

	// 認証ミドルウェア
	identityMiddleware := middlewares.IdentityMiddleware(identityService)
	authMiddleware := middlewares.AuthMiddleware(identityService, userService)

	// APIグループを作成
	api := r.Group("/api/v1")
	{
		// ヘルスチェックルート(認証不要)
		api.GET("/health", healthController.Check)

		// 認証ルート
		auth := api.Group("/auth")
		{
			// 同期はユーザー未登録でも呼べる必要がある
			auth.POST("/sync", identityMiddleware, authController.Sync)
			auth.GET("/me", authMiddleware, authController.GetMe)
		}

		// 投稿ルート
		posts := api.Group("/posts")
		{
			posts.GET("", authMiddleware, postController.List)
			posts.POST("", authMiddleware, postController.Create)
			posts.GET("/:id", authMiddleware, postController.GetByID)
			posts.DELETE("/:id", authMiddleware, postController.Delete)
			posts.POST("/:id/like", authMiddleware, postController.ToggleLike)
			posts.GET("/:id/liked", authMiddleware, postController.HasLiked)
		}

		// アップロードルート
		uploads := api.Group("/uploads")
		{
			uploads.POST("/url", authMiddleware, uploadController.CreateUploadURL)
		}

		// ユーザールート
		users := api.Group("/users")
		{
			users.GET("/:id", authMiddleware, userController.GetByID)
			users.GET("/:id/posts", authMiddleware, userController.GetPosts)
			users.PUT("/profile", authMiddleware, userController.UpdateProfile)
		}
	}

	return r
}
