package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrTokenExpired срок действия токена истек.
var ErrTokenExpired = errors.New("token expired")

// UserClaims данные JWT токена пользователя, выданного провайдером
// идентичности. Ядро токены не выпускает, только проверяет подпись.
type UserClaims struct {
	jwt.RegisteredClaims
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GenerateUserJWT создает JWT токен пользователя. Используется тестами
// и локальной разработкой; в продакшне токены подписывает внешний
// провайдер тем же ключом.
//
// Параметры:
//   - claims: данные пользователя
//   - expire: срок действия токена
//   - key: ключ для подписи токена
//
// Возвращает:
//   - string: сгенерированный JWT токен
//   - error: ошибка генерации токена
func GenerateUserJWT(claims UserClaims, expire time.Duration, key []byte) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(expire))
	token, err := generateJWT(claims, key)
	if err != nil {
		return "", fmt.Errorf("generating user jwt token: %w", err)
	}
	return token, nil
}

// ValidateUserJWT проверяет JWT токен пользователя.
//
// Параметры:
//   - tokenString: JWT токен в виде строки
//   - key: ключ для проверки подписи
//
// Возвращает:
//   - *UserClaims: данные пользователя из токена
//   - error: ошибка проверки (ErrTokenExpired если истек срок действия)
func ValidateUserJWT(tokenString string, key []byte) (*UserClaims, error) {
	token, err := validateJWT(tokenString, new(UserClaims), key)
	if err != nil {
		return nil, fmt.Errorf("validating user jwt token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func generateJWT(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating jwt token: %w", err)
	}

	return tokenString, nil
}

func validateJWT(tokenString string, claims jwt.Claims, key []byte) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parsing jwt token: %w", err)
	}

	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}

	return token, nil
}
