package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

// ErrInvalidToken возвращается для чужого, просроченного или повреждённого токена
var ErrInvalidToken = errors.New("invalid token")

const issuer = "lab-scheduler"

// Claims содержит данные токена сессии
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer выпускает и проверяет HS256 токены сессии
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает токен для actor
func (i *TokenIssuer) Issue(actor model.Actor) (string, error) {
	now := i.now()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок действия и возвращает actor из токена
func (i *TokenIssuer) Parse(tokenString string) (model.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: subject %q", ErrInvalidToken, claims.Subject)
	}

	role := model.Role(claims.Role)
	if !role.Valid() {
		return model.Actor{}, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	}

	return model.Actor{ID: id, Role: role}, nil
}
