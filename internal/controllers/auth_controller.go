package controllers

import (
	"net/http"

	"github.com/Framez/framez_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthController IDプロバイダとのユーザー同期に関するコントローラー
type AuthController struct {
	userService services.UserService
}

// NewAuthController AuthControllerを作成
func NewAuthController(userService services.UserService) *AuthController {
	return &AuthController{
		userService: userService,
	}
}

// syncRequest サインアップ完了時の同期リクエスト
type syncRequest struct {
	Name      string `json:"name" binding:"required"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Sync サインアップ完了後にIDプロバイダのユーザーをこちらに登録する。
// 既に登録済みの場合は既存レコードをそのまま返す
func (c *AuthController) Sync(ctx *gin.Context) {
	// 検証済みトークンのクレームを取得
	identity, exists := ctx.Get("identity")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	claims := identity.(*services.IdentityClaims)

	// リクエストをバインド
	var req syncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := c.userService.GetOrCreate(claims.ExternalID, claims.Email, req.Name, req.Username, req.AvatarURL)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// GetMe 自分のユーザー情報を取得
func (c *AuthController) GetMe(ctx *gin.Context) {
	user, exists := ctx.Get("user")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}
