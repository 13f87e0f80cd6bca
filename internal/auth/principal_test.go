// ABOUTME: Tests for principal types and context propagation
// ABOUTME: Covers the entitlement predicate over both principal kinds

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserPrincipal_Entitlement(t *testing.T) {
	entitled := UserPrincipal{Username: "alice", Entitled: true}
	assert.Equal(t, "alice", entitled.Name())
	assert.True(t, entitled.CanUseExternalTools())
	assert.False(t, entitled.IsAdmin())

	plain := UserPrincipal{Username: "bob"}
	assert.False(t, plain.CanUseExternalTools())
	assert.False(t, plain.IsAdmin())
}

func TestAdminPrincipal_AlwaysEntitled(t *testing.T) {
	admin := AdminPrincipal{Label: "operator"}
	assert.Equal(t, "operator", admin.Name())
	assert.True(t, admin.CanUseExternalTools())
	assert.True(t, admin.IsAdmin())

	unnamed := AdminPrincipal{}
	assert.Equal(t, "admin", unnamed.Name())
}

func TestContext_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))

	p := UserPrincipal{Username: "alice", Entitled: true}
	ctx = WithPrincipal(ctx, p)

	got := FromContext(ctx)
	assert.Equal(t, p, got)
	assert.Equal(t, p, MustFromContext(ctx))
}

func TestMustFromContext_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustFromContext(context.Background())
	})
}
