package middlewares

import (
	"net/http"
	"strings"

	"github.com/Framez/framez_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// extractBearerToken AuthorizationヘッダーからBearerトークンを取り出す
func extractBearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// IdentityMiddleware IDプロバイダのトークンを検証してクレームだけを
// コンテキストに保存する。ユーザーが未登録でも通す(サインアップ同期用)
func IdentityMiddleware(identityService services.IdentityService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := extractBearerToken(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
			ctx.Abort()
			return
		}

		claims, err := identityService.VerifyToken(tokenString)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "無効なトークンです"})
			ctx.Abort()
			return
		}

		ctx.Set("identity", claims)
		ctx.Next()
	}
}

// AuthMiddleware 認証ミドルウェア。トークンを検証し、対応する
// 登録済みユーザーをコンテキストに保存する
func AuthMiddleware(identityService services.IdentityService, userService services.UserService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := extractBearerToken(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
			ctx.Abort()
			return
		}

		claims, err := identityService.VerifyToken(tokenString)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "無効なトークンです"})
			ctx.Abort()
			return
		}

		// 登録済みユーザーを取得
		user, err := userService.GetByExternalID(claims.ExternalID)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーが登録されていません"})
			ctx.Abort()
			return
		}

		ctx.Set("identity", claims)
		ctx.Set("user", user)
		ctx.Next()
	}
}
