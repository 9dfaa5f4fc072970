package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"project-tracker/internal/pkg/config"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

// UserClaims 用户Claims
type UserClaims struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AuthType    string `json:"auth_type"` // ldap or local
	Type        string `json:"type"`      // access or refresh
	jwt.RegisteredClaims
}

// Identity 签发 Token 所需的用户信息
type Identity struct {
	Username    string
	Email       string
	DisplayName string
	AuthType    string
}

// Issuer 签发与校验管理员 Token
type Issuer struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewIssuer(cfg config.JWTConfig) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// AccessTokenTTL 访问Token有效期(秒)
func (i *Issuer) AccessTokenTTL() int {
	return i.cfg.AccessTokenExpire
}

// GenerateAccessToken 生成访问Token
func (i *Issuer) GenerateAccessToken(id Identity) (string, error) {
	return i.sign(id, constants.JWTTypeAccess, time.Duration(i.cfg.AccessTokenExpire)*time.Second)
}

// GenerateRefreshToken 生成刷新Token
func (i *Issuer) GenerateRefreshToken(id Identity) (string, error) {
	return i.sign(id, constants.JWTTypeRefresh, time.Duration(i.cfg.RefreshTokenExpire)*time.Second)
}

func (i *Issuer) sign(id Identity, tokenType string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := UserClaims{
		Username:    id.Username,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		AuthType:    id.AuthType,
		Type:        tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.cfg.Secret))
}

// ParseToken 解析Token
func (i *Issuer) ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(i.cfg.Secret), nil
	}, jwt.WithTimeFunc(i.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgErrors.ErrTokenExpired
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, "解析Token失败", err).WithReason(pkgErrors.ReasonUnauthorized)
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, pkgErrors.ErrInvalidToken
}

// ValidateToken 校验Token并检查类型
func (i *Issuer) ValidateToken(tokenString, tokenType string) (*UserClaims, error) {
	claims, err := i.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		return nil, pkgErrors.ErrInvalidToken
	}
	return claims, nil
}

