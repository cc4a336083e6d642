package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config アプリケーション設定
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Identity   IdentityConfig
	S3         S3Config
	Cloudinary CloudinaryConfig
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

// IdentityConfig 外部IDプロバイダ設定
// トークンの発行はプロバイダ側の責務で、ここでは検証用の情報のみ持つ
type IdentityConfig struct {
	JWTSecret string
	Issuer    string
}

// S3Config 画像ストレージ設定
type S3Config struct {
	Region         string
	Bucket         string
	Endpoint       string // MinIO等の互換ストレージ用(空ならAWS)
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	URLExpiry      time.Duration // 署名付きURLの有効期限
}

// CloudinaryConfig アバター画像アップロード設定
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Load 環境変数から設定をロード
func Load() (*Config, error) {
	// .env ファイルをロード (存在すれば)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT", 10)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT", 10)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			Username: getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "framez"),
		},
		Identity: IdentityConfig{
			JWTSecret: getEnv("IDENTITY_JWT_SECRET", "your-secret-key"),
			Issuer:    getEnv("IDENTITY_ISSUER", ""),
		},
		S3: S3Config{
			Region:         getEnv("S3_REGION", "ap-northeast-1"),
			Bucket:         getEnv("S3_BUCKET", "framez-images"),
			Endpoint:       getEnv("S3_ENDPOINT", ""),
			AccessKey:      getEnv("S3_ACCESS_KEY", ""),
			SecretKey:      getEnv("S3_SECRET_KEY", ""),
			ForcePathStyle: getEnvAsBool("S3_FORCE_PATH_STYLE", false),
			URLExpiry:      time.Duration(getEnvAsInt("S3_URL_EXPIRY_MINUTES", 15)) * time.Minute,
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "framez/avatars"),
		},
	}

	return config, nil
}

// getEnv 環境変数を取得、存在しない場合はデフォルト値を返す
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool 環境変数をboolとして取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
