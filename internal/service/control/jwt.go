package control

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const sessionIDKey = "session_id"

type Claims struct {
	SessionID string `json:"session_id"`
}

func (s service) generateJWT(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		sessionIDKey: sessionID,
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

func (s service) parseJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sessionID, ok := claims[sessionIDKey].(string)
	if !ok || sessionID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SessionID: sessionID,
	}, nil
}
