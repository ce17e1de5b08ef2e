package auth_test

import (
	"context"
	"sync"
	"testing"

	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisioningLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepositoryManager(newTestDB(t))
	p := auth.NewProvisionerFromManager(repo, auth.WithLogger(&captureLogger{}))

	identity := auth.ExternalIdentity{Account: "alice", TenantID: "acme", DisplayName: "Alice A"}

	created, err := p.Resolve(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "alice@acme.com", created.Email)
	assert.Equal(t, "Alice A", created.FirstName)
	assert.Equal(t, auth.RoleRoot, created.Role)

	identity.DisplayName = "Alice B"
	updated, err := p.Resolve(ctx, identity)
	require.NoError(t, err)

	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, "Alice B", updated.FirstName)
	assert.Equal(t, "", updated.LastName)
	assert.Equal(t, created.Role, updated.Role)
	assert.Equal(t, created.Token, updated.Token)
	assert.Equal(t, created.GetRumToken(), updated.GetRumToken())
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	assert.Equal(t, auth.DefaultOrg, updated.Org)

	stored, err := repo.Users().Get(ctx, nil, "alice@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", stored.FirstName)
	assert.Equal(t, created.Token, stored.Token)

	memberships, err := repo.OrgUsers().ListByEmail(ctx, "alice@acme.com")
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, auth.DefaultOrg, memberships[0].Org)

	count, err := repo.Users().CountByEmail(ctx, "alice@acme.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProvisioningUpdateAfterRoleChangeKeepsRole(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepositoryManager(newTestDB(t))
	p := auth.NewProvisionerFromManager(repo, auth.WithLogger(&captureLogger{}))

	identity := auth.ExternalIdentity{Account: "bob", TenantID: "globex", DisplayName: "Bob"}

	created, err := p.Resolve(ctx, identity)
	require.NoError(t, err)

	require.NoError(t, repo.OrgUsers().Update(ctx, auth.DefaultOrg, created.Email, auth.RoleViewer, created.Token, created.RumToken))

	updated, err := p.Resolve(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleViewer, updated.Role)
}

func TestProvisioningConcurrentFirstLogins(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepositoryManager(newTestDB(t))
	logger := &captureLogger{}
	p := auth.NewProvisionerFromManager(repo, auth.WithLogger(logger))

	identity := auth.ExternalIdentity{Account: "carol", TenantID: "initech", DisplayName: "Carol"}

	const workers = 8
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Resolve(ctx, identity)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, auth.IsStorageError(err), "unexpected error: %v", err)
	}
	assert.GreaterOrEqual(t, succeeded, 1)

	count, err := repo.Users().CountByEmail(ctx, "carol@initech.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var created int
	for _, call := range logger.snapshot() {
		if call.message == "created oauth2 user" {
			created++
		}
	}
	assert.Equal(t, 1, created)
}
