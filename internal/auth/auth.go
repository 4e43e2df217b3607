// Package auth checks demo credentials and issues the signed session
// tokens that carry a caller's role.
package auth

import (
	"PortalServer/internal/entities"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserExists         = errors.New("user already exists")
)

type Claims struct {
	Username  string        `json:"username"`
	Role      entities.Role `json:"role"`
	PatientID string        `json:"patient_id,omitempty"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string        `json:"token"`
	User      entities.User `json:"user"`
	ExpiresAt time.Time     `json:"expires_at"`
}

type Authenticator struct {
	mu     sync.RWMutex
	users  map[string]entities.User
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration, now func() time.Time) *Authenticator {
	if now == nil {
		now = time.Now
	}
	return &Authenticator{
		users:  make(map[string]entities.User),
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

func normalize(username string) string {
	return html.EscapeString(strings.TrimSpace(username))
}

// AddUser hashes password and registers the user.
func (a *Authenticator) AddUser(u entities.User, password string) error {
	op := "Authenticator.AddUser"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	u.Username = normalize(u.Username)
	u.PasswordHash = string(hashed)

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[u.Username]; ok {
		return fmt.Errorf("%s: %s: %w", op, u.Username, ErrUserExists)
	}
	a.users[u.Username] = u
	return nil
}

func (a *Authenticator) User(username string) (entities.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[normalize(username)]
	return u, ok
}

// Login checks the credentials and returns a signed session. Any
// mismatch reports ErrInvalidCredentials without saying which half was
// wrong.
func (a *Authenticator) Login(username, password string) (Session, error) {
	u, ok := a.User(username)
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, expires, err := a.issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("Authenticator.Login: %w", err)
	}
	u.PasswordHash = ""
	return Session{Token: token, User: u, ExpiresAt: expires}, nil
}

func (a *Authenticator) issue(u entities.User) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := Claims{
		Username:  u.Username,
		Role:      u.Role,
		PatientID: u.PatientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken validates signature and expiry.
func (a *Authenticator) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != entities.RoleAdmin && claims.Role != entities.RolePatient {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}
