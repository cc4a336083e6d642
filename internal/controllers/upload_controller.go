package controllers

import (
	"fmt"
	"net/http"

	"github.com/Framez/framez_backend/internal/apperrors"
	"github.com/Framez/framez_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// UploadController 画像アップロードに関するコントローラー。
// ファイル本体はクライアントが署名付きURLへ直接PUTするので、
// ここではURLの発行だけを行う
type UploadController struct {
	storage services.StorageService
}

// NewUploadController UploadControllerを作成
func NewUploadController(storage services.StorageService) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

// uploadURLRequest アップロードURL発行リクエスト
type uploadURLRequest struct {
	ContentType string `json:"content_type"`
}

// CreateUploadURL アップロード用の署名付きURLを発行
func (c *UploadController) CreateUploadURL(ctx *gin.Context) {
	// ボディは省略可能。指定された場合のみContent-Typeを読み取る
	var req uploadURLRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	key, url, err := c.storage.GenerateUploadURL(req.ContentType)
	if err != nil {
		respondError(ctx, fmt.Errorf("%v: %w", err, apperrors.ErrUpstream))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"key":        key,
		"upload_url": url,
	})
}
