package security

import (
	"errors"
	"strconv"
	"time"

	"karhubty-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeAccess TokenType = "access"
)

// AccountClaims identifies the caller. AccountID is only unique together with
// Kind, since users and agents are numbered separately.
type AccountClaims struct {
	AccountID int64              `json:"accountId"`
	Kind      domain.AccountKind `json:"kind"`
	Role      domain.Role        `json:"role"`
	Email     string             `json:"email,omitempty"`
	Type      TokenType          `json:"type"`
	jwt.RegisteredClaims
}

// Account rebuilds the auth-boundary account from the claims.
func (c *AccountClaims) Account() domain.Account {
	return domain.Account{Kind: c.Kind, ID: c.AccountID, Email: c.Email, Role: c.Role}
}

type TokenManager interface {
	GenerateAccessToken(account domain.Account) (string, error)
	ValidateToken(tokenString string) (*AccountClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "karhubty",
	}
}

func (m *tokenManager) GenerateAccessToken(account domain.Account) (string, error) {
	now := time.Now()
	claims := AccountClaims{
		AccountID: account.ID,
		Kind:      account.Kind,
		Role:      account.Role,
		Email:     account.Email,
		Type:      TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(account.Kind) + ":" + strconv.FormatInt(account.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{"api-access"},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*AccountClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccountClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	if claims.AccountID == 0 || (claims.Kind != domain.AccountKindUser && claims.Kind != domain.AccountKindAgent) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
