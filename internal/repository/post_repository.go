package repository

import (
	"errors"
	"fmt"

	"github.com/Framez/framez_backend/internal/apperrors"
	"github.com/Framez/framez_backend/internal/models"

	"gorm.io/gorm"
)

// PostRepository 投稿といいねに関するデータベース操作を行うインターフェース
type PostRepository interface {
	Create(post *models.Post) error
	FindByID(id uint) (*models.Post, error)
	ListAll() ([]models.Post, error)
	ListByUser(userID uint) ([]models.Post, error)
	Delete(id uint) error

	// いいね関連
	HasLiked(userID, postID uint) (bool, error)
	CreateLike(like *models.Like) error
	DeleteLike(userID, postID uint) error
	IncrementLikes(postID uint) error
	DecrementLikes(postID uint) error

	// Transaction fnの中の操作をひとつのトランザクションで実行する。
	// いいねレコードとカウンターの更新を不可分にするために使う
	Transaction(fn func(tx PostRepository) error) error
}

// postRepository PostRepositoryの実装
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository PostRepositoryを作成
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create 新しい投稿を作成
func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// FindByID IDで投稿を検索
func (r *postRepository) FindByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("投稿が見つかりません: ID=%d: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &post, nil
}

// ListAll 全投稿を新着順に取得
func (r *postRepository) ListAll() ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByUser ユーザーの投稿一覧を新着順に取得
func (r *postRepository) ListByUser(userID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete 投稿を削除
func (r *postRepository) Delete(id uint) error {
	// いいねレコードも一緒に削除する
	if err := r.db.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Post{}, id).Error
}

// HasLiked ユーザーがいいねしているか確認
func (r *postRepository) HasLiked(userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateLike いいねレコードを作成
func (r *postRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike いいねレコードを削除
func (r *postRepository) DeleteLike(userID, postID uint) error {
	result := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("いいねが見つかりません: %w", apperrors.ErrNotFound)
	}
	return nil
}

// IncrementLikes いいね数をSQL側でアトミックに増加
func (r *postRepository) IncrementLikes(postID uint) error {
	return r.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
}

// DecrementLikes いいね数をアトミックに減少。0未満にはしない
func (r *postRepository) DecrementLikes(postID uint) error {
	return r.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("GREATEST(likes_count - 1, 0)")).Error
}

// Transaction トランザクション内で操作を実行
func (r *postRepository) Transaction(fn func(tx PostRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&postRepository{db: tx})
	})
}
