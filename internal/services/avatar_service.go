package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"

	"github.com/Framez/framez_backend/internal/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// AvatarService アバター画像のCloudinaryへのアップロードを管理するサービス
type AvatarService interface {
	UploadAvatar(file multipart.File, fileName string) (string, error)
}

type avatarService struct {
	cld *cloudinary.Cloudinary
	cfg *config.Config
}

// NewAvatarService AvatarServiceを作成
func NewAvatarService(cfg *config.Config) (AvatarService, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)
	if err != nil {
		return nil, err
	}

	return &avatarService{
		cld: cld,
		cfg: cfg,
	}, nil
}

// UploadAvatar アバター画像をアップロードしてURLを返す
func (s *avatarService) UploadAvatar(file multipart.File, fileName string) (string, error) {
	// ファイルデータを読み込み
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		return "", fmt.Errorf("ファイルの読み込みに失敗しました: %v", err)
	}

	// アップロードパラメータを設定
	uploadParams := uploader.UploadParams{
		Folder:       s.cfg.Cloudinary.Folder,
		PublicID:     fileName,
		ResourceType: "image",
		// アバターは一律に圧縮する
		Transformation: "q_80",
	}

	result, err := s.cld.Upload.Upload(context.Background(), buf, uploadParams)
	if err != nil {
		return "", fmt.Errorf("Cloudinaryへのアップロードに失敗しました: %v", err)
	}

	return result.SecureURL, nil
}
