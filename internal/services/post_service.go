package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/Framez/framez_backend/internal/apperrors"
	"github.com/Framez/framez_backend/internal/models"
	"github.com/Framez/framez_backend/internal/repository"
)

// PostService 投稿といいねに関するサービスインターフェース
type PostService interface {
	Create(userID uint, caption, imageStorageKey string) (*models.Post, error)
	GetByID(id uint) (*models.Post, error)
	ListAll() ([]models.Post, error)
	ListByUser(userID uint) ([]models.Post, error)
	Delete(postID, userID uint) error
	ToggleLike(postID, userID uint) (bool, error)
	HasLiked(postID, userID uint) (bool, error)
}

// postService PostServiceの実装
type postService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	storage  StorageService
}

// NewPostService PostServiceを作成
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, storage StorageService) PostService {
	return &postService{
		postRepo: postRepo,
		userRepo: userRepo,
		storage:  storage,
	}
}

// Create 新しい投稿を作成。作者名とアバターは作成時点の
// スナップショットとして保存する
func (s *postService) Create(userID uint, caption, imageStorageKey string) (*models.Post, error) {
	// ユーザーの存在を確認
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	// ストレージキーがある場合は現時点のURLを取得しておく。
	// このURLは期限切れになるため読み取り時には信用せず、
	// キーを持たないレガシー投稿のフォールバックにしかならない
	var imageURL string
	if imageStorageKey != "" {
		url, err := s.storage.GetURL(imageStorageKey)
		if err != nil {
			log.Printf("作成時のURL取得に失敗しました(続行): %v", err)
		} else {
			imageURL = url
		}
	}

	post := &models.Post{
		UserID:          userID,
		AuthorName:      user.Name,
		AuthorAvatar:    user.AvatarURL,
		Caption:         caption,
		ImageStorageKey: imageStorageKey,
		ImageURL:        imageURL,
		LikesCount:      0,
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	return post, nil
}

// GetByID IDで投稿を取得
func (s *postService) GetByID(id uint) (*models.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	posts := []models.Post{*post}
	s.resolveImageURLs(posts)

	return &posts[0], nil
}

// ListAll 全投稿を新着順に取得
func (s *postService) ListAll() ([]models.Post, error) {
	posts, err := s.postRepo.ListAll()
	if err != nil {
		return nil, err
	}

	s.resolveImageURLs(posts)

	return posts, nil
}

// ListByUser ユーザーの投稿一覧を新着順に取得
func (s *postService) ListByUser(userID uint) ([]models.Post, error) {
	// ユーザーの存在を確認
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	s.resolveImageURLs(posts)

	return posts, nil
}

// resolveImageURLs 各投稿の画像URLをストレージから取り直す。
// 保存済みURLは期限切れの可能性があるため、キーがある限り
// 常に新しい署名付きURLを優先する。取得できない場合は保存済み
// URLにフォールバックし、読み取り自体は失敗させない。
// 投稿ごとに独立なので並列に解決する。スライスの順序は変えない
func (s *postService) resolveImageURLs(posts []models.Post) {
	var wg sync.WaitGroup
	for i := range posts {
		if posts[i].ImageStorageKey == "" {
			continue
		}
		wg.Add(1)
		go func(post *models.Post) {
			defer wg.Done()
			url, err := s.storage.GetURL(post.ImageStorageKey)
			if err != nil {
				log.Printf("画像URLの取得に失敗しました(フォールバック): key=%s: %v", post.ImageStorageKey, err)
				return
			}
			if url != "" {
				post.ImageURL = url
			}
		}(&posts[i])
	}
	wg.Wait()
}

// Delete 投稿を削除。所有者のみが削除できる。
// 先に画像ブロブをベストエフォートで削除してからレコードを消す
func (s *postService) Delete(postID, userID uint) error {
	// 投稿を取得
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}

	// 権限チェック
	if post.UserID != userID {
		return fmt.Errorf("この投稿を削除する権限がありません: %w", apperrors.ErrUnauthorized)
	}

	// 画像ブロブを削除。失敗してもレコードの削除は続行する
	if post.ImageStorageKey != "" {
		if err := s.storage.Delete(post.ImageStorageKey); err != nil {
			log.Printf("画像ブロブの削除に失敗しました(続行): key=%s: %v", post.ImageStorageKey, err)
		}
	}

	return s.postRepo.Delete(postID)
}

// ToggleLike いいねの状態を反転し、新しい状態を返す。
// いいねレコードの変更とカウンターの更新をひとつのトランザクションで
// 行うので、同じ投稿への同時操作でもカウンターはレコード数とずれない
func (s *postService) ToggleLike(postID, userID uint) (bool, error) {
	var liked bool

	err := s.postRepo.Transaction(func(tx repository.PostRepository) error {
		// 投稿の存在を確認。存在しなければトグル全体を失敗させ、
		// 孤立したいいねレコードを作らない
		if _, err := tx.FindByID(postID); err != nil {
			return err
		}

		has, err := tx.HasLiked(userID, postID)
		if err != nil {
			return err
		}

		if has {
			// いいね解除
			if err := tx.DeleteLike(userID, postID); err != nil {
				return err
			}
			if err := tx.DecrementLikes(postID); err != nil {
				return err
			}
			liked = false
			return nil
		}

		// いいね
		if err := tx.CreateLike(&models.Like{UserID: userID, PostID: postID}); err != nil {
			return err
		}
		if err := tx.IncrementLikes(postID); err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return liked, nil
}

// HasLiked ユーザーがいいねしているか確認
func (s *postService) HasLiked(postID, userID uint) (bool, error) {
	return s.postRepo.HasLiked(userID, postID)
}
