package services

import (
	"errors"
	"testing"

	"github.com/Framez/framez_backend/internal/apperrors"
	"github.com/Framez/framez_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func newTestUserService(t *testing.T) (UserService, *fakeUserRepo, *fakeAvatarService) {
	t.Helper()
	userRepo := newFakeUserRepo()
	avatar := &fakeAvatarService{url: "https://cdn.example/avatar.png"}
	return NewUserService(userRepo, avatar), userRepo, avatar
}

func TestGetOrCreate_CreatesUser(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	user, err := svc.GetOrCreate("ext_1", "alice@example.com", "Alice", "alice", "")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "ext_1", user.ExternalID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice", user.Username)
}

func TestGetOrCreate_FirstWriteWins(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	first, err := svc.GetOrCreate("ext_1", "alice@example.com", "Alice", "alice", "")
	require.NoError(t, err)

	// 同じ外部IDで別の名前を渡しても既存レコードがそのまま返る
	second, err := svc.GetOrCreate("ext_1", "alice@example.com", "Someone Else", "someoneelse", "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice", second.Name)
	assert.Equal(t, "alice", second.Username)
}

func TestGetOrCreate_NormalizesUsername(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	user, err := svc.GetOrCreate("ext_1", "john@example.com", "John", "John.Doe_42", "")
	require.NoError(t, err)

	assert.Equal(t, "johndoe42", user.Username)
}

func TestGetOrCreate_DerivesUsernameFromEmail(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	user, err := svc.GetOrCreate("ext_1", "Jane.Roe@example.com", "Jane", "", "")
	require.NoError(t, err)

	assert.Equal(t, "janeroe", user.Username)
}

func TestGetOrCreate_UsernameCollision(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	first, err := svc.GetOrCreate("ext_1", "alice@a.example.com", "Alice", "alice", "")
	require.NoError(t, err)

	second, err := svc.GetOrCreate("ext_2", "alice@b.example.com", "Alice B", "alice", "")
	require.NoError(t, err)

	assert.Equal(t, "alice", first.Username)
	assert.NotEqual(t, first.Username, second.Username)
	assert.Contains(t, second.Username, "alice")
}

func TestGetOrCreate_ConcurrentFirstSync(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, &fakeAvatarService{})

	// 存在チェックを通過した後、INSERTの前に別リクエストが
	// 同じ外部IDで登録を済ませた状況を再現する
	userRepo.beforeCreate = func() {
		userRepo.beforeCreate = nil
		winner := &models.User{
			ExternalID: "ext_1",
			Email:      "alice@example.com",
			Name:       "Alice",
			Username:   "alice",
		}
		require.NoError(t, userRepo.Create(winner))
	}

	// 負けた側もエラーではなく勝った側のレコードを受け取る
	user, err := svc.GetOrCreate("ext_1", "alice@example.com", "Someone Else", "someoneelse", "")
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice", user.Username)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	user, err := svc.GetOrCreate("ext_1", "alice@example.com", "Alice", "alice", "")
	require.NoError(t, err)

	// 名前とユーザー名は空なら据え置き、bioは送信された値で更新される
	updated, err := svc.UpdateProfile(user.ID, "", "", strPtr("hello world"), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "hello world", updated.Bio)

	// 名前だけの更新でbioは消えない
	updated, err = svc.UpdateProfile(user.ID, "Alice Cooper", "", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, "hello world", updated.Bio)

	// 空文字の送信はbioの削除として扱う
	updated, err = svc.UpdateProfile(user.ID, "", "", strPtr(""), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, "", updated.Bio)
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.GetOrCreate("ext_1", "alice@example.com", "Alice", "alice", "")
	require.NoError(t, err)
	bob, err := svc.GetOrCreate("ext_2", "bob@example.com", "Bob", "bob", "")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(bob.ID, "", "alice", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestUpdateProfile_UserNotFound(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.UpdateProfile(999, "Name", "", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
