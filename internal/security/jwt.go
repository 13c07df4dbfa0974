package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the gateway's view of a verified identity token. The token is
// issued by the platform's auth service; besides the registered claims it
// carries role information in whatever shape that service's version used
// (`rol` as string or object, `id_rol`, `idRol`). The raw claim set is kept
// as a map precisely so the access resolver can apply its shape-tolerant
// role normalization instead of a rigid schema.
type Claims struct {
	Subject  string
	TokenID  string
	Identity map[string]any
}

// JWTManager verifies and, for tooling, issues HS256 identity tokens.
type JWTManager struct {
	issuer   string
	audience string
	secret   []byte
}

func NewJWTManager(issuer, audience, secret string) *JWTManager {
	return &JWTManager{issuer: issuer, audience: audience, secret: []byte(secret)}
}

// ParseAccessToken verifies signature, expiry, issuer and audience, and
// returns the claims with the full raw claim set preserved.
func (m *JWTManager) ParseAccessToken(raw string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, mapClaims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", errors.Join(ErrInvalidToken, err))
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := mapClaims.GetSubject()
	tokenID, _ := mapClaims["jti"].(string)

	identity := make(map[string]any, len(mapClaims))
	for k, v := range mapClaims {
		identity[k] = v
	}
	return &Claims{Subject: subject, TokenID: tokenID, Identity: identity}, nil
}

// IssueAccessToken signs a token carrying the given identity fields. Used by
// the CLI and tests; production tokens come from the auth service with the
// same shared secret.
func (m *JWTManager) IssueAccessToken(subject, tokenID string, identity map[string]any, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"jti": tokenID,
		"iss": m.issuer,
		"aud": m.audience,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for k, v := range identity {
		claims[k] = v
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
