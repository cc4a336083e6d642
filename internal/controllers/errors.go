package controllers

import (
	"errors"
	"net/http"

	"github.com/Framez/framez_backend/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// respondError エラー種別をHTTPステータスに変換してレスポンスを返す
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidToken):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUpstream):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
