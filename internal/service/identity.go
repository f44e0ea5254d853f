package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const identityTokenTTL = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid identity token")

// CandidateClaims identifies one portal visitor. Subject is a server-minted
// candidate ID; it scopes informal attempts and practice results, nothing
// more. There is no account behind it.
type CandidateClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IdentityService mints and validates candidate identity tokens. The portal
// requests one on first visit and replays it on every call, so informal
// attempts survive reloads under a stable candidate ID.
type IdentityService struct {
	secret []byte
}

func NewIdentityService(secret string) *IdentityService {
	return &IdentityService{secret: []byte(secret)}
}

// IssueToken mints a token for a fresh candidate ID.
func (s *IdentityService) IssueToken(name string) (token string, candidateID string, err error) {
	candidateID = uuid.New().String()
	now := time.Now()

	claims := CandidateClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   candidateID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(identityTokenTTL)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign identity token: %w", err)
	}
	return token, candidateID, nil
}

// ValidateToken parses and verifies a candidate token.
func (s *IdentityService) ValidateToken(tokenStr string) (*CandidateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CandidateClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidToken, "expired")
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CandidateClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
