package apperrors

import "errors"

// アプリケーション全体で使うエラー種別。
// errors.Isで判定できるよう各層はこれらをラップして返す
var (
	// ErrNotFound 参照先のリソースが存在しない
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized リソースの所有者ではない
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation 入力値が不正
	ErrValidation = errors.New("validation error")

	// ErrUpstream 外部サービス(ストレージ・IDプロバイダ)の呼び出しに失敗
	ErrUpstream = errors.New("upstream error")

	// ErrInvalidToken IDプロバイダのトークンが無効
	ErrInvalidToken = errors.New("invalid token")
)
