// Package identity resolves the authenticated principal behind a connection
// attempt. The platform API issues HS256 tokens; browsers cannot set headers
// on WebSocket dials, so the token is accepted from the Authorization header
// or a token query parameter.
package identity

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type JWTProvider struct {
	secret []byte
	issuer string
}

func NewJWTProvider(secret, issuer string) *JWTProvider {
	return &JWTProvider{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (p *JWTProvider) Resolve(r *http.Request) (*domain.Identity, error) {
	tokenString := tokenFromRequest(r)
	if tokenString == "" {
		return nil, domain.ErrAuthenticationMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer))
	if err != nil {
		return nil, domain.ErrAuthenticationMissing
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, domain.ErrAuthenticationMissing
	}

	return &domain.Identity{
		ID:       claims.UserID,
		Username: claims.Username,
	}, nil
}

// GenerateToken creates a signed token for a user. The gateway itself never
// issues credentials; this exists for tooling and tests.
func (p *JWTProvider) GenerateToken(userID, username string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    p.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}

	return r.URL.Query().Get("token")
}
