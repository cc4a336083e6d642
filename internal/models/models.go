package models

import (
	"time"
)

// User ユーザーモデル
// 認証は外部IDプロバイダに委譲し、ExternalIDでプロバイダの
// サブジェクトIDと紐付ける
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ExternalID string    `json:"-" gorm:"uniqueIndex;not null"`
	Email      string    `json:"email" gorm:"uniqueIndex;not null"`
	Name       string    `json:"name" gorm:"not null"`
	Username   string    `json:"username" gorm:"uniqueIndex;not null"`
	AvatarURL  string    `json:"avatar_url"`
	Bio        string    `json:"bio"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// リレーション
	Posts []Post `json:"-"`
	Likes []Like `json:"-"`
}

// Post 投稿モデル
// AuthorName/AuthorAvatarは作成時点のスナップショットで、
// 後からプロフィールを編集しても追従しない
type Post struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	AuthorName      string    `json:"author_name" gorm:"not null"`
	AuthorAvatar    string    `json:"author_avatar"`
	Caption         string    `json:"caption" gorm:"type:varchar(2200)"`
	ImageStorageKey string    `json:"image_storage_key"`
	ImageURL        string    `json:"image_url"`
	LikesCount      int       `json:"likes" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`

	// リレーション
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Like いいねモデル
// (UserID, PostID)の複合主キーで1ユーザー1投稿につき1件を保証する。
// いいねの有無はこのレコードの存在が唯一の真実で、Post.LikesCountは
// 派生キャッシュにすぎない
type Like struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// リレーション
	User User `json:"-"`
	Post Post `json:"-"`
}
