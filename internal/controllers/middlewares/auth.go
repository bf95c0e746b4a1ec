package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/linkstats/internal/tokens"
)

// CurrentUserKey ключ контекста gin с данными аутентифицированного пользователя.
const CurrentUserKey = "currentUser"

// AuthMiddleware проверяет bearer токен провайдера идентичности и кладет
// данные пользователя в контекст. Ядро само никого не аутентифицирует:
// токен выпущен снаружи, здесь только проверка подписи.
func AuthMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.ValidateUserJWT(token, jwtSecret)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CurrentUserKey, claims)
		c.Next()
	}
}

// CurrentUser достает данные пользователя из контекста. Возвращает nil
// если запрос не прошел AuthMiddleware.
func CurrentUser(c *gin.Context) *tokens.UserClaims {
	val, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	claims, ok := val.(*tokens.UserClaims)
	if !ok {
		return nil
	}
	return claims
}
