package controllers

import (
	"net/http"
	"strconv"

	"github.com/Framez/framez_backend/internal/models"
	"github.com/Framez/framez_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// PostController 投稿に関するコントローラー
type PostController struct {
	postService services.PostService
}

// NewPostController PostControllerを作成
func NewPostController(postService services.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

// createPostRequest 投稿作成リクエスト
type createPostRequest struct {
	Caption         string `json:"caption" binding:"max=2200"`
	ImageStorageKey string `json:"image_storage_key"`
}

// Create 新しい投稿を作成
func (c *PostController) Create(ctx *gin.Context) {
	// ユーザー情報を取得
	user, exists := ctx.Get("user")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	u := user.(*models.User)

	// リクエストをバインド
	var req createPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := c.postService.Create(u.ID, req.Caption, req.ImageStorageKey)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"post": post})
}

// List 全投稿を新着順に取得(フィード用)
func (c *PostController) List(ctx *gin.Context) {
	posts, err := c.postService.ListAll()
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetByID IDで投稿を取得
func (c *PostController) GetByID(ctx *gin.Context) {
	// IDを解析
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	post, err := c.postService.GetByID(uint(id))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"post": post})
}

// Delete 投稿を削除
func (c *PostController) Delete(ctx *gin.Context) {
	// IDを解析
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	// ユーザー情報を取得
	user, exists := ctx.Get("user")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	u := user.(*models.User)

	if err := c.postService.Delete(uint(id), u.ID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// ToggleLike いいねの状態を反転
func (c *PostController) ToggleLike(ctx *gin.Context) {
	// IDを解析
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	// ユーザー情報を取得
	user, exists := ctx.Get("user")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	u := user.(*models.User)

	liked, err := c.postService.ToggleLike(uint(id), u.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"liked": liked})
}

// HasLiked ユーザーがいいねしているか確認
func (c *PostController) HasLiked(ctx *gin.Context) {
	// IDを解析
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	// ユーザー情報を取得
	user, exists := ctx.Get("user")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}
	u := user.(*models.User)

	liked, err := c.postService.HasLiked(uint(id), u.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"liked": liked})
}
