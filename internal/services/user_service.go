package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/Framez/framez_backend/internal/apperrors"
	"github.com/Framez/framez_backend/internal/models"
	"github.com/Framez/framez_backend/internal/repository"
	"github.com/Framez/framez_backend/internal/utils"
)

// UserService ユーザーに関するサービスインターフェース
type UserService interface {
	GetOrCreate(externalID, email, name, username, avatarURL string) (*models.User, error)
	GetByExternalID(externalID string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	UpdateProfile(userID uint, name, username string, bio *string, avatar multipart.File, avatarHeader *multipart.FileHeader) (*models.User, error)
}

// userService UserServiceの実装
type userService struct {
	userRepo      repository.UserRepository
	avatarService AvatarService
}

// NewUserService UserServiceを作成
func NewUserService(userRepo repository.UserRepository, avatarService AvatarService) UserService {
	return &userService{
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

// GetOrCreate サインアップ完了時にユーザーを取得または作成する。
// 既存ユーザーがいればそのまま返す(最初の登録内容が優先され、
// 後から違う名前で呼ばれても上書きしない)
func (s *userService) GetOrCreate(externalID, email, name, username, avatarURL string) (*models.User, error) {
	// 既存ユーザーを確認
	existing, err := s.userRepo.FindByExternalID(externalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// ユーザー名を決定
	uname, err := s.resolveUsername(username, email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ExternalID: externalID,
		Email:      email,
		Name:       name,
		Username:   uname,
		AvatarURL:  avatarURL,
	}

	if err := s.userRepo.Create(user); err != nil {
		// 同じ外部IDの初回同期が同時に走ると、負けた側のINSERTは
		// 一意制約で失敗する。その場合は勝った側のレコードを返す
		if existing, findErr := s.userRepo.FindByExternalID(externalID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	return user, nil
}

// resolveUsername ユーザー名を正規化し、重複する場合はランダムな
// サフィックスを付けて一意にする
func (s *userService) resolveUsername(username, email string) (string, error) {
	uname := utils.NormalizeUsername(username)
	if uname == "" {
		uname = utils.DeriveUsername(email)
	}
	if uname == "" {
		uname = "user" + utils.GenerateRandomString(6)
	}

	// 重複を確認
	_, err := s.userRepo.FindByUsername(uname)
	if errors.Is(err, apperrors.ErrNotFound) {
		return uname, nil
	}
	if err != nil {
		return "", err
	}

	// 使われている場合はサフィックスを付ける
	candidate := uname + utils.GenerateRandomString(4)
	if _, err := s.userRepo.FindByUsername(candidate); errors.Is(err, apperrors.ErrNotFound) {
		return candidate, nil
	} else if err != nil {
		return "", err
	}

	return "", fmt.Errorf("ユーザー名を確保できませんでした: %w", apperrors.ErrValidation)
}

// GetByExternalID IDプロバイダのサブジェクトIDでユーザーを取得
func (s *userService) GetByExternalID(externalID string) (*models.User, error) {
	return s.userRepo.FindByExternalID(externalID)
}

// GetByID IDでユーザーを取得
func (s *userService) GetByID(id uint) (*models.User, error) {
	return s.userRepo.FindByID(id)
}

// UpdateProfile ユーザープロフィールを更新。送信されたフィールド
// だけを反映する。投稿に保存された作者スナップショットには反映されない
func (s *userService) UpdateProfile(userID uint, name, username string, bio *string, avatar multipart.File, avatarHeader *multipart.FileHeader) (*models.User, error) {
	// ユーザーを取得
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	// フィールドを更新(空でない場合のみ)
	if strings.TrimSpace(name) != "" {
		user.Name = name
	}
	if strings.TrimSpace(username) != "" {
		uname := utils.NormalizeUsername(username)
		if uname == "" {
			return nil, fmt.Errorf("ユーザー名が不正です: %w", apperrors.ErrValidation)
		}
		if uname != user.Username {
			// 別のユーザーが使っていないか確認
			if _, err := s.userRepo.FindByUsername(uname); err == nil {
				return nil, fmt.Errorf("このユーザー名は既に使用されています: %w", apperrors.ErrValidation)
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			user.Username = uname
		}
	}

	// bioは送信された場合のみ更新する。空文字は「bioを消す」として扱い、
	// フィールド自体が送られていなければ既存の値を保持する
	if bio != nil {
		user.Bio = *bio
	}

	// アバター画像がアップロードされた場合はCloudinaryへ
	if avatar != nil && avatarHeader != nil {
		fileName := fmt.Sprintf("avatar_%d_%s", userID, utils.GenerateRandomString(8))
		avatarURL, err := s.avatarService.UploadAvatar(avatar, fileName)
		if err != nil {
			return nil, fmt.Errorf("アバターのアップロードに失敗しました: %v: %w", err, apperrors.ErrUpstream)
		}
		user.AvatarURL = avatarURL
	}

	// データベースを更新
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}
