package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"github.com/resumeflow/resumeflow-backend/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// SecretKeySubject identifies callers authenticated with the shared secret
const SecretKeySubject = "secret_key"

// ErrInvalidSecret is returned for every rejected upload
var ErrInvalidSecret = errors.Unauthorized("Invalid secret key")

// Authenticator checks the secret_key form field or a Bearer token
type Authenticator struct {
	secret    []byte
	hash      []byte
	jwtSecret []byte
	issuer    string
}

// NewAuthenticator creates an authenticator from the auth configuration
func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	a := &Authenticator{issuer: cfg.JWTIssuer}
	if cfg.SecretKeyHash != "" {
		a.hash = []byte(cfg.SecretKeyHash)
	} else if cfg.SecretKey != "" {
		a.secret = []byte(cfg.SecretKey)
	}
	if cfg.JWTSecret != "" {
		a.jwtSecret = []byte(cfg.JWTSecret)
	}
	return a
}

// Authenticate returns the caller subject. The multipart form must already be parsed.
func (a *Authenticator) Authenticate(r *http.Request) (string, error) {
	if token, ok := bearerToken(r); ok && a.jwtSecret != nil {
		return a.validateToken(token)
	}
	if a.checkSecret(r.FormValue("secret_key")) {
		return SecretKeySubject, nil
	}
	return "", ErrInvalidSecret
}

func (a *Authenticator) checkSecret(provided string) bool {
	if provided == "" {
		return false
	}
	if a.hash != nil {
		return bcrypt.CompareHashAndPassword(a.hash, []byte(provided)) == nil
	}
	if a.secret == nil {
		return false
	}
	return subtle.ConstantTimeCompare(a.secret, []byte(provided)) == 1
}

func (a *Authenticator) validateToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSecret
	}
	return claims.Subject, nil
}

// IssueToken signs an HS256 token for subject valid for ttl
func (a *Authenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	if a.jwtSecret == nil {
		return "", errors.New("JWT_DISABLED", "JWT secret is not configured", http.StatusInternalServerError)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.New().String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
