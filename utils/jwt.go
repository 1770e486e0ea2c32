package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var JWTSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Default hanya untuk development/test
		secret = "TableOrderDevSecret1945"
	}
	JWTSecret = []byte(secret)
}

// TokenType membedakan token staff (gerencia/dev) dari token meja
// (tablet customer). Keduanya lewat jalur auth yang sama tapi klaimnya
// merujuk tabel berbeda.
const (
	TokenTypeStaff = "staff"
	TokenTypeTable = "table"
)

type CustomClaims struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func GenerateStaffToken(userID uint, name, role string) (string, error) {
	return generateToken(userID, name, role, TokenTypeStaff, 8*time.Hour)
}

// GenerateTableToken membuat token untuk tablet meja. Token meja
// berumur lebih panjang karena tablet menyala sepanjang jam operasional.
func GenerateTableToken(tableID uint, tableName string) (string, error) {
	return generateToken(tableID, tableName, "", TokenTypeTable, 12*time.Hour)
}

func generateToken(id uint, name, role, tokenType string, ttl time.Duration) (string, error) {
	claims := &CustomClaims{
		UserID:    id,
		Name:      name,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "TableOrderApp",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return JWTSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
