package controllers

import (
	"net/http"
	"strconv"

	"github.com/Framez/framez_backend/internal/models"
	"github.com/Framez/framez_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// UserController ユーザーに関するコントローラー
type UserController struct {
	userService services.UserService
	postService services.PostService
}

// NewUserController UserControllerを作成
func NewUserController(userService services.UserService, postService services.PostService) *UserController {
	return &UserController{
		userService: userService,
		postService: postService,
	}
}

// GetByID IDでユーザーを取得
func (c *UserController) GetByID(ctx *gin.Context) {
	// IDを解析
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	user, err := c.userService.GetByID(uint(id))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

// GetPosts ユーザーの投稿一覧を取得(プロフィールのグリッド用)
func (c *UserController) GetPosts(ctx *gin.Context) {
	// IDを解析
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	posts, err := c.postService.ListByUser(uint(id))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"posts": posts})
}

// UpdateProfile 自分のプロフィールを更新
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	// ユーザー情報を取得
	user, exists := ctx.Get("user")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	u := user.(*models.User)

	// マルチパートフォームを解析
	if err := ctx.Request.ParseMultipartForm(10 << 20); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "マルチパートフォームの解析に失敗しました"})
		return
	}

	name := ctx.PostForm("name")
	username := ctx.PostForm("username")

	// bioはフィールドが送信された場合のみ更新対象にする。
	// 空文字の送信はbioの削除を意味する
	var bio *string
	if value, ok := ctx.GetPostForm("bio"); ok {
		bio = &value
	}

	// アバター画像を取得(オプション)
	avatar, avatarHeader, err := ctx.Request.FormFile("avatar")
	if err == nil && avatar != nil {
		defer avatar.Close()
	}

	updatedUser, err := c.userService.UpdateProfile(u.ID, name, username, bio, avatar, avatarHeader)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updatedUser})
}
