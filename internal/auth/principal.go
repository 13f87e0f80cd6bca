// ABOUTME: Principal types for authenticated callers and context propagation
// ABOUTME: Distinguishes regular users from the master-credential admin principal

package auth

import (
	"context"
)

// Principal is an authenticated caller. There are exactly two kinds:
// a UserPrincipal backed by a user row, and an AdminPrincipal backed by
// the master credential. Entitlement checks are a single predicate over
// the principal type rather than a flag smuggled through session state.
type Principal interface {
	// Name returns the username for users, or the admin label.
	Name() string
	// CanUseExternalTools reports whether this caller may see and run
	// external tools.
	CanUseExternalTools() bool
	// IsAdmin reports whether this caller may mutate server tools and settings.
	IsAdmin() bool
}

// UserPrincipal is a regular community member.
type UserPrincipal struct {
	Username string
	// Entitled mirrors the user's external_features bit at auth time.
	Entitled bool
}

// Name returns the username.
func (p UserPrincipal) Name() string { return p.Username }

// CanUseExternalTools reports the per-user entitlement bit.
func (p UserPrincipal) CanUseExternalTools() bool { return p.Entitled }

// IsAdmin always returns false for regular users.
func (p UserPrincipal) IsAdmin() bool { return false }

// AdminPrincipal is a caller authenticated with the master credential.
// It bypasses the per-user entitlement bit entirely.
type AdminPrincipal struct {
	Label string
}

// Name returns the admin label, defaulting to "admin".
func (p AdminPrincipal) Name() string {
	if p.Label == "" {
		return "admin"
	}
	return p.Label
}

// CanUseExternalTools always returns true for the master credential.
func (p AdminPrincipal) CanUseExternalTools() bool { return true }

// IsAdmin always returns true for the master credential.
func (p AdminPrincipal) IsAdmin() bool { return true }

// principalContextKey is the key type for storing a Principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext retrieves the Principal from the context, returning nil if not present.
func FromContext(ctx context.Context) Principal {
	val := ctx.Value(principalContextKey{})
	if val == nil {
		return nil
	}
	p, ok := val.(Principal)
	if !ok {
		return nil
	}
	return p
}

// MustFromContext retrieves the Principal from the context, panicking if not present.
func MustFromContext(ctx context.Context) Principal {
	p := FromContext(ctx)
	if p == nil {
		panic("auth: Principal not found in context")
	}
	return p
}
