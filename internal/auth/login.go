// ABOUTME: Login flow producing session tokens for users and the master admin
// ABOUTME: The master password authenticates any username as an AdminPrincipal

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/techguides/techhub/internal/store"
)

// ErrLoginFailed is returned when neither the user credentials nor the
// master password match.
var ErrLoginFailed = errors.New("invalid username or password")

// UserAuthenticator is the slice of the identity store the login flow needs.
type UserAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*store.User, error)
}

// Login authenticates credentials and issues a session token.
//
// The master password is checked first: a match authenticates the caller as
// an AdminPrincipal regardless of whether the username exists. This is the
// deliberate escape hatch for the site operator, not a per-user entitlement.
type Login struct {
	users          UserAuthenticator
	verifier       *JWTVerifier
	masterPassword string
	tokenTTL       time.Duration
	logger         *slog.Logger
}

// NewLogin creates a login flow. masterPassword may be empty to disable the
// admin override entirely.
func NewLogin(users UserAuthenticator, verifier *JWTVerifier, masterPassword string, tokenTTL time.Duration) *Login {
	return &Login{
		users:          users,
		verifier:       verifier,
		masterPassword: masterPassword,
		tokenTTL:       tokenTTL,
		logger:         slog.Default().With("component", "auth"),
	}
}

// Authenticate verifies credentials and returns a signed token plus the
// resolved principal. Returns ErrLoginFailed on any mismatch.
func (l *Login) Authenticate(ctx context.Context, username, password string) (string, Principal, error) {
	if l.isMasterPassword(password) {
		token, err := l.verifier.Generate(username, true, l.tokenTTL)
		if err != nil {
			return "", nil, err
		}
		l.logger.Info("master credential login", "username", username)
		return token, AdminPrincipal{Label: username}, nil
	}

	user, err := l.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrBadCredentials) {
			return "", nil, ErrLoginFailed
		}
		return "", nil, err
	}

	token, err := l.verifier.Generate(user.Username, false, l.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	l.logger.Info("user login", "username", user.Username)
	return token, UserPrincipal{Username: user.Username, Entitled: user.ExternalFeatures}, nil
}

// isMasterPassword compares against the master credential in constant time.
func (l *Login) isMasterPassword(password string) bool {
	if l.masterPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(l.masterPassword)) == 1
}
