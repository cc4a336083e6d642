package services

import (
	"errors"
	"fmt"

	"github.com/Framez/framez_backend/internal/apperrors"
	"github.com/Framez/framez_backend/internal/config"

	"github.com/dgrijalva/jwt-go"
)

// IdentityService 外部IDプロバイダのセッショントークンを検証するサービスインターフェース。
// 資格情報の検証やトークンの発行はプロバイダ側の責務で、ここでは
// 検証済みトークンからサブジェクトIDを取り出すだけ
type IdentityService interface {
	VerifyToken(tokenString string) (*IdentityClaims, error)
}

// IdentityClaims 検証済みトークンから取り出すユーザー情報
type IdentityClaims struct {
	ExternalID string
	Email      string
	Name       string
}

// providerClaims IDプロバイダが発行するトークンのペイロード
type providerClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.StandardClaims
}

// identityService IdentityServiceの実装
type identityService struct {
	config *config.Config
}

// NewIdentityService IdentityServiceを作成
func NewIdentityService(cfg *config.Config) IdentityService {
	return &identityService{config: cfg}
}

// VerifyToken トークンを検証してクレームを取り出す
func (s *identityService) VerifyToken(tokenString string) (*IdentityClaims, error) {
	claims := &providerClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 署名方法を確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Identity.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrInvalidToken)
	}

	if !token.Valid {
		return nil, fmt.Errorf("無効なトークンです: %w", apperrors.ErrInvalidToken)
	}

	// 発行者を確認(設定されている場合のみ)
	if s.config.Identity.Issuer != "" && claims.Issuer != s.config.Identity.Issuer {
		return nil, fmt.Errorf("発行者が一致しません: %w", apperrors.ErrInvalidToken)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("サブジェクトIDがありません: %w", apperrors.ErrInvalidToken)
	}

	return &IdentityClaims{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
	}, nil
}
