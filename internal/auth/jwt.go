package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingToken is returned when no Authorization header is present.
	ErrMissingToken = errors.New("missing token")
	// ErrMalformedHeader is returned when the header is not "Bearer <token>".
	ErrMalformedHeader = errors.New("malformed authorization header")
	// ErrTokenInvalid is returned for bad signatures or malformed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked is returned for tokens found on the denylist.
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims carries the identity embedded in an access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates access tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTManager creates the manager with the configured secret and TTL.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// AccessTTL reports the configured access-token lifetime.
func (m *JWTManager) AccessTTL() time.Duration {
	return m.accessTTL
}

// Issue creates an HS256 JWT for the given identity and returns it with its jti.
func (m *JWTManager) Issue(subject, email, role, name string) (string, string, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		Email: email,
		Role:  role,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// Verify checks signature and expiry. Expired tokens are reported separately
// from malformed or badly signed ones so callers can prompt a refresh.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// BearerToken extracts the raw token from an Authorization header value. The
// header must be exactly "Bearer <token>"; surrounding whitespace in the token
// part is a malformed header, not a token to be tried against the verifier.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedHeader
	}
	token := parts[1]
	if token == "" || token != strings.TrimSpace(token) {
		return "", ErrMalformedHeader
	}
	return token, nil
}
