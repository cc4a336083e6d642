package utils

import (
	"strings"
)

// NormalizeUsername ユーザー名を小文字英数字のみに正規化
func NormalizeUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeriveUsername メールアドレスのローカル部からユーザー名を導出
func DeriveUsername(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	return NormalizeUsername(local)
}
