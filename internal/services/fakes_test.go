package services

import (
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/Framez/framez_backend/internal/apperrors"
	"github.com/Framez/framez_backend/internal/models"
	"github.com/Framez/framez_backend/internal/repository"
)

// --- テスト用のインメモリ実装 ---

type fakePostRepo struct {
	posts  map[uint]*models.Post
	likes  map[string]*models.Like
	nextID uint
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[uint]*models.Post),
		likes: make(map[string]*models.Like),
	}
}

func likeKey(userID, postID uint) string {
	return fmt.Sprintf("%d:%d", userID, postID)
}

func (f *fakePostRepo) Create(post *models.Post) error {
	f.nextID++
	post.ID = f.nextID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	stored := *post
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakePostRepo) FindByID(id uint) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("投稿が見つかりません: ID=%d: %w", id, apperrors.ErrNotFound)
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) ListAll() ([]models.Post, error) {
	var posts []models.Post
	for _, p := range f.posts {
		posts = append(posts, *p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (f *fakePostRepo) ListByUser(userID uint) ([]models.Post, error) {
	var posts []models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (f *fakePostRepo) Delete(id uint) error {
	for key, like := range f.likes {
		if like.PostID == id {
			delete(f.likes, key)
		}
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) HasLiked(userID, postID uint) (bool, error) {
	_, ok := f.likes[likeKey(userID, postID)]
	return ok, nil
}

func (f *fakePostRepo) CreateLike(like *models.Like) error {
	key := likeKey(like.UserID, like.PostID)
	if _, ok := f.likes[key]; ok {
		return fmt.Errorf("duplicate like")
	}
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}
	stored := *like
	f.likes[key] = &stored
	return nil
}

func (f *fakePostRepo) DeleteLike(userID, postID uint) error {
	key := likeKey(userID, postID)
	if _, ok := f.likes[key]; !ok {
		return fmt.Errorf("いいねが見つかりません: %w", apperrors.ErrNotFound)
	}
	delete(f.likes, key)
	return nil
}

func (f *fakePostRepo) IncrementLikes(postID uint) error {
	if post, ok := f.posts[postID]; ok {
		post.LikesCount++
	}
	return nil
}

func (f *fakePostRepo) DecrementLikes(postID uint) error {
	if post, ok := f.posts[postID]; ok && post.LikesCount > 0 {
		post.LikesCount--
	}
	return nil
}

func (f *fakePostRepo) Transaction(fn func(tx repository.PostRepository) error) error {
	return fn(f)
}

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint

	// beforeCreate INSERT直前に差し込む処理。存在チェックとINSERTの
	// 間に別リクエストが割り込む状況を再現するために使う
	beforeCreate func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	// 外部IDの一意制約を模す
	for _, u := range f.users {
		if u.ExternalID == user.ExternalID {
			return fmt.Errorf("Error 1062: Duplicate entry '%s' for key 'users.external_id'", user.ExternalID)
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("ユーザーが見つかりません: ID=%d: %w", id, apperrors.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByExternalID(externalID string) (*models.User, error) {
	for _, user := range f.users {
		if user.ExternalID == externalID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("ユーザーが見つかりません: %w", apperrors.ErrNotFound)
}

func (f *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("ユーザーが見つかりません: %w", apperrors.ErrNotFound)
}

func (f *fakeUserRepo) Update(user *models.User) error {
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

// fakeStorage 画像URLの解決は並列に走るのでロックで守る
type fakeStorage struct {
	mu      sync.Mutex
	blobs   map[string]bool
	getErr  error
	calls   int
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string]bool)}
}

func (f *fakeStorage) GenerateUploadURL(contentType string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := fmt.Sprintf("posts/test/%d", f.calls)
	return key, "https://blob.example/upload/" + key, nil
}

// GetURL 呼び出しごとに異なるURLを返して署名付きURLの期限切れを模す
func (f *fakeStorage) GetURL(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	if !f.blobs[key] {
		return "", nil
	}
	f.calls++
	return fmt.Sprintf("https://blob.example/%s?sig=%d", key, f.calls), nil
}

func (f *fakeStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.blobs, key)
	return nil
}

type fakeAvatarService struct {
	url string
	err error
}

func (f *fakeAvatarService) UploadAvatar(file multipart.File, fileName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}
