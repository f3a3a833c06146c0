package services

import (
	"context"
	"fmt"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenSubject is what a validated token resolves to: a profile id plus
// whether it belongs to an anonymous session.
type TokenSubject struct {
	ProfileID string
	Anonymous bool
}

type TokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	userRepo      domain.UserRepository
}

func NewTokenService(secretKey string, issuer string, tokenDuration time.Duration, userRepo domain.UserRepository) *TokenService {
	return &TokenService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		userRepo:      userRepo,
	}
}

func (s *TokenService) GenerateToken(userID string) (string, error) {
	return s.generate(userID, false)
}

// GenerateAnonymousToken issues a token for a locally minted anonymous
// profile id. Anonymous tokens skip the user lookup during validation since
// no user record backs them.
func (s *TokenService) GenerateAnonymousToken(profileID string) (string, error) {
	return s.generate(profileID, true)
}

func (s *TokenService) generate(subject string, anonymous bool) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(s.tokenDuration).Unix(),
		"iat": time.Now().Unix(),
		"iss": s.issuer,
	}
	if anonymous {
		claims["anon"] = true
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("token service: failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (s *TokenService) ValidateToken(tokenString string) (TokenSubject, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		return TokenSubject{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TokenSubject{}, fmt.Errorf("invalid token claims")
	}

	if iss, ok := claims["iss"].(string); !ok || iss != s.issuer {
		return TokenSubject{}, fmt.Errorf("invalid token issuer")
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return TokenSubject{}, fmt.Errorf("invalid token subject")
	}

	anonymous, _ := claims["anon"].(bool)
	if anonymous {
		return TokenSubject{ProfileID: subject, Anonymous: true}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, subject); err != nil {
		return TokenSubject{}, fmt.Errorf("user no longer exists or db error: %w", err)
	}

	return TokenSubject{ProfileID: subject}, nil
}
