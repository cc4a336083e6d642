package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Framez/framez_backend/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// StorageService 画像ブロブストアとの連携を管理するサービスインターフェース。
// ストアは不透明なキーと引き換えに期限付きの署名付きURLを発行する
type StorageService interface {
	// GenerateUploadURL アップロード用の署名付きPUT URLとキーを発行
	GenerateUploadURL(contentType string) (key string, url string, err error)
	// GetURL キーに対応する現在有効な署名付きGET URLを取得。
	// ブロブが存在しない場合は空文字列を返す(エラーにしない)
	GetURL(key string) (string, error)
	// Delete ブロブを削除
	Delete(key string) error
}

// s3StorageService S3(互換ストレージ含む)によるStorageServiceの実装
type s3StorageService struct {
	svc *s3.S3
	cfg *config.Config
}

// NewStorageService StorageServiceを作成
func NewStorageService(cfg *config.Config) (StorageService, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.S3.Region),
	}

	// MinIO等の互換ストレージ用設定
	if cfg.S3.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3.Endpoint)
	}
	if cfg.S3.ForcePathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.S3.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3.AccessKey, cfg.S3.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの初期化に失敗しました: %v", err)
	}

	return &s3StorageService{
		svc: s3.New(sess),
		cfg: cfg,
	}, nil
}

// generateObjectKey 日付とUUIDからオブジェクトキーを生成
func generateObjectKey() string {
	d := time.Now()
	return fmt.Sprintf("posts/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.New())
}

// GenerateUploadURL アップロード用の署名付きPUT URLを発行
func (s *s3StorageService) GenerateUploadURL(contentType string) (string, string, error) {
	key := generateObjectKey()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.S3.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, _ := s.svc.PutObjectRequest(input)
	url, err := req.Presign(s.cfg.S3.URLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("アップロードURLの発行に失敗しました: %v", err)
	}

	return key, url, nil
}

// GetURL キーに対応する署名付きGET URLを取得
func (s *s3StorageService) GetURL(key string) (string, error) {
	// ブロブの存在を確認。削除済みなら空文字列を返す
	_, err := s.svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}

	req, _ := s.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(s.cfg.S3.URLExpiry)
	if err != nil {
		return "", err
	}

	return url, nil
}

// Delete ブロブを削除
func (s *s3StorageService) Delete(key string) error {
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	return err
}
