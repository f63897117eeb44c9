package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cohortly/config"
)

// Roles carried by API tokens
const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

type Claims struct {
	SubjectID uint   `json:"subject_id"` // participant ID for participant tokens
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed API token for the dashboard or the
// participant portal.
func GenerateToken(subjectID uint, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
