package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

// Claims identifies the logged in operator.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Token is a signed operator session.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator checks the configured operator credentials and issues tokens.
type Authenticator struct {
	cfg config.AdminConfig
	now func() time.Time
}

func NewAuthenticator(cfg config.AdminConfig) *Authenticator {
	return &Authenticator{cfg: cfg, now: time.Now}
}

// Login returns a token when email and password match the operator account.
func (a *Authenticator) Login(email, password string) (Token, error) {
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(a.cfg.Email)),
	) == 1
	passwordOK := VerifyPassword(a.cfg.PasswordHash, password)
	if !emailOK || !passwordOK {
		return Token{}, models.ErrInvalidCredentials
	}
	return a.issue(a.cfg.Email)
}

func (a *Authenticator) issue(email string) (Token, error) {
	now := a.now()
	expiresAt := now.Add(time.Duration(a.cfg.ExpirationHours) * time.Hour)

	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    a.cfg.Issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate verifies a token and returns its claims.
func (a *Authenticator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(a.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
