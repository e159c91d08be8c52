// Package session keeps the signed-in employee in a signed JWT cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the session token.
const CookieName = "surat_session"

// ErrNoSession is returned by Get when the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Claims is the token payload.
type Claims struct {
	NIP   string `json:"nip"`
	Name  string `json:"nama"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserData returns the session view carried by the claims.
func (c *Claims) UserData() *models.UserData {
	return &models.UserData{NIP: c.NIP, Name: c.Name, Role: c.Role, Email: c.Email}
}

// Store issues and reads session tokens. Tokens are accepted from the
// session cookie or an "Authorization: Bearer" header.
type Store struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewStore returns a Store signing with secret. secure marks the cookie
// HTTPS-only.
func NewStore(secret string, ttl time.Duration, secure bool) (*Store, error) {
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable must be set")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}, nil
}

// Issue signs a token for user.
func (s *Store) Issue(user *models.UserData) (string, error) {
	now := s.now()
	claims := Claims{
		NIP:   user.NIP,
		Name:  user.Name,
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.NIP,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (s *Store) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// Save writes the session cookie for user and returns the token.
func (s *Store) Save(w http.ResponseWriter, user *models.UserData) (string, error) {
	token, err := s.Issue(user)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.now().Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Get returns the user of the request's session.
func (s *Store) Get(r *http.Request) (*models.UserData, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		if c, err := r.Cookie(CookieName); err == nil {
			tokenStr = c.Value
		}
	}
	if tokenStr == "" {
		return nil, ErrNoSession
	}
	claims, err := s.Parse(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return claims.UserData(), nil
}

// Clear expires the session cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
