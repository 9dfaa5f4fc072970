package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"project-tracker/internal/pkg/jwt"
	"project-tracker/pkg/constants"
	"project-tracker/pkg/utils"
)

// AuthMiddleware JWT认证中间件, 仅接受 AccessToken
func AuthMiddleware(issuer *jwt.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorWithCode(c, 401, "缺少Authorization Header")
			c.Abort()
			return
		}

		// 检查Bearer前缀
		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			utils.ErrorWithCode(c, 401, "Authorization格式错误")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)
		claims, err := issuer.ValidateToken(token, constants.JWTTypeAccess)
		if err != nil {
			utils.Error(c, err)
			c.Abort()
			return
		}

		// 将用户信息存入context
		c.Set(constants.JWTContextKey, claims)
		c.Set("username", claims.Username)
		c.Set("auth_type", claims.AuthType)

		c.Next()
	}
}

// CurrentClaims 取出认证中间件写入的 claims
func CurrentClaims(c *gin.Context) (*jwt.UserClaims, bool) {
	v, ok := c.Get(constants.JWTContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.UserClaims)
	return claims, ok
}
