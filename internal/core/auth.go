package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"radruga/pkg/models"
)

// Identity is the caller established from a bearer token
type Identity struct {
	UserID string
	Role   models.UserRole
}

// IsAdmin reports whether the caller may use the admin API
func (i Identity) IsAdmin() bool {
	return i.Role == models.UserRoleAdmin
}

// AuthService checks tokens minted by the account service. IssueToken exists
// for tooling and tests; players never get tokens from this process.
type AuthService interface {
	ValidateToken(ctx context.Context, tokenString string) (Identity, error)
	IssueToken(userID string, role models.UserRole, ttl time.Duration) (string, error)
}

type authService struct {
	jwtSecret []byte
	jwtIssuer string
	now       func() time.Time
}

type jwtClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService creates an HMAC token validator
func NewAuthService(jwtSecret, jwtIssuer string) AuthService {
	return &authService{jwtSecret: []byte(jwtSecret), jwtIssuer: jwtIssuer, now: time.Now}
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (Identity, error) {
	_ = ctx
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return Identity{}, models.ErrInvalidToken
	}
	if s.jwtIssuer != "" && !claims.VerifyIssuer(s.jwtIssuer, true) {
		return Identity{}, fmt.Errorf("%w: unexpected issuer %q", models.ErrInvalidToken, claims.Issuer)
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if strings.TrimSpace(userID) == "" {
		return Identity{}, fmt.Errorf("%w: token has no user", models.ErrInvalidToken)
	}

	role := models.UserRole(claims.Role)
	if role != models.UserRoleAdmin {
		role = models.UserRoleUser
	}
	return Identity{UserID: userID, Role: role}, nil
}

func (s *authService) IssueToken(userID string, role models.UserRole, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.jwtIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
