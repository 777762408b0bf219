package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleCommander роль токенов, выдаваемых командирам из меню бота.
const RoleCommander = "commander"

// Claims стандартные claims JWT плюс поля приложения.
// Role позволяет middleware решать доступ без обращения к БД.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// Generate выпускает подписанный HS256 токен для Telegram ID userID.
func Generate(secret string, userID int64, role, issuer string, expMinutes int) (string, error) {
	return GenerateAt(secret, userID, role, issuer, expMinutes, time.Now())
}

// GenerateAt как Generate, но с явным моментом выпуска.
func GenerateAt(secret string, userID int64, role, issuer string, expMinutes int, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: пустой secret")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID: userID,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse проверяет подпись и срок действия, возвращает userID и role.
func Parse(secret, tokenString string) (userID int64, role string, err error) {
	if secret == "" {
		return 0, "", fmt.Errorf("jwt: пустой secret")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("некорректные claims")
	}
	return claims.UserID, claims.Role, nil
}
