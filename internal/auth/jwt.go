package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Oturumlar kişiye değil kliniğe açılır; tek bir konu yeterli.
const StaffSubject = "staff"

type SessionClaims struct {
	jwt.RegisteredClaims
}

// GenerateToken issuedAt anından ttl süresince geçerli bir oturum token'ı üretir.
func GenerateToken(secret string, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   StaffSubject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken imzayı, süreyi ve konuyu doğrular.
func ParseToken(secret, tokenStr string, now time.Time) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("geçersiz imzalama yöntemi")
		}
		return []byte(secret), nil
	},
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithSubject(StaffSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token çözümlenemedi")
	}
	return claims, nil
}
