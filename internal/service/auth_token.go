package service

import (
	"time"

	"github.com/coursehub-next/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// UserJWTClaims 用户令牌声明
// 令牌由外部身份服务以共享密钥签发（HS256），这里只定义声明结构。
type UserJWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IssueUserToken 使用共享密钥签发用户令牌（供种子数据与测试使用）
func IssueUserToken(secretKey string, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserJWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
