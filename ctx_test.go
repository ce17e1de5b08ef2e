package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextEnricher(t *testing.T) {
	identity := auth.ExternalIdentity{Account: "alice", TenantID: "acme"}
	user := &auth.User{Email: identity.Email()}

	ctx := auth.ContextEnricher(context.Background(), identity, user)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, user, got)

	gotIdentity, ok := auth.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, gotIdentity)
}

func TestFromContextEmpty(t *testing.T) {
	_, ok := auth.FromContext(context.Background())
	assert.False(t, ok)

	_, ok = auth.IdentityFromContext(context.Background())
	assert.False(t, ok)
}
