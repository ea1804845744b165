package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rocketscienceinc/popugame-backend/internal/entity"
	"github.com/rocketscienceinc/popugame-backend/internal/pkg"
)

var ErrInvalidToken = errors.New("invalid identity token")

const guestTokenTTL = 30 * 24 * time.Hour

// IdentityService issues and resolves opaque player identities. Guests get
// a signed token carrying an anonymous identity; authenticated callers
// present their user id through the same channel.
type IdentityService interface {
	IssueGuestToken() (token, identity string, err error)
	ResolveIdentity(token string) (string, error)
}

type identityService struct {
	secretKey string
}

func NewIdentityService(secretKey string) IdentityService {
	return &identityService{
		secretKey: secretKey,
	}
}

func (that *identityService) IssueGuestToken() (string, string, error) {
	identity := entity.AnonPrefix + pkg.GenerateGuestID()

	claims := jwt.MapClaims{}
	claims["sub"] = identity
	claims["exp"] = time.Now().Add(guestTokenTTL).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, identity, nil
}

func (that *identityService) ResolveIdentity(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, token.Header["alg"])
		}
		return []byte(that.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	identity, ok := claims["sub"].(string)
	if !ok || identity == "" {
		return "", ErrInvalidToken
	}

	return identity, nil
}
