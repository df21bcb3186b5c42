// Package auth verifies bearer tokens issued by the external identity provider.
package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Identity is the verified caller.
type Identity struct {
	UserID string
	Email  string
}

// Verifier turns a bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims are the token claims the API reads. UID and UserID are fallbacks for
// providers that do not put the account id in "sub".
type Claims struct {
	Email  string `json:"email,omitempty"`
	UID    string `json:"uid,omitempty"`
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) subject() string {
	switch {
	case c.Subject != "":
		return c.Subject
	case c.UserID != "":
		return c.UserID
	default:
		return c.UID
	}
}

// JWTConfig configures a JWTVerifier. At least one of Secret or PublicKey must be set.
type JWTConfig struct {
	Secret    []byte
	PublicKey *rsa.PublicKey
	Audience  string
	Issuer    string
}

// JWTVerifier checks HS256 signatures against a shared secret and RS256
// signatures against a public key.
type JWTVerifier struct {
	cfg    JWTConfig
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier from cfg.
func NewJWTVerifier(cfg JWTConfig) (*JWTVerifier, error) {
	var methods []string
	if len(cfg.Secret) > 0 {
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if cfg.PublicKey != nil {
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	if len(methods) == 0 {
		return nil, errors.New("auth: a JWT secret or public key is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &JWTVerifier{cfg: cfg, parser: jwt.NewParser(opts...)}, nil
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	uid := claims.subject()
	if uid == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: uid, Email: claims.Email}, nil
}

func (v *JWTVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		return v.cfg.Secret, nil
	case *jwt.SigningMethodRSA:
		return v.cfg.PublicKey, nil
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

// LoadRSAPublicKey reads a PEM-encoded RSA public key from path.
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return key, nil
}

// IssueToken signs an HS256 token for userID. The API never issues tokens to
// clients; this serves local development and tests.
func IssueToken(secret []byte, userID, email string, ttl time.Duration, audience string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
