package main

import (
	"context"
	"testing"
	"time"

	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/goliatone/go-auth-oauth2/cmd/oauth2-provisioner/config"
	"github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos []string
	args  [][]any
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Info(msg string, args ...any) {
	l.infos = append(l.infos, msg)
	l.args = append(l.args, args)
}

func TestOpenDatabaseRunsMigrations(t *testing.T) {
	ctx := context.Background()
	logger := glog.NewLogger(glog.WithName("test"), glog.WithAddSource(false)).GetLogger("persistence")

	db, err := OpenDatabase(ctx, config.Persistence{
		DSN:                   "file::memory:?cache=shared",
		PingTimeoutExpression: "2s",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := auth.NewRepositoryManager(db)
	require.NoError(t, repo.Validate())

	p := auth.NewProvisionerFromManager(repo, auth.WithLogger(logger))
	user, err := p.Resolve(ctx, auth.ExternalIdentity{Account: "alice", TenantID: "acme", DisplayName: "Alice"})
	require.NoError(t, err)

	count, err := repo.Users().CountByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAuditSinkLogsEvent(t *testing.T) {
	logger := &recordingLogger{}
	sink := AuditSink(logger)

	err := sink.Record(context.Background(), auth.ActivityEvent{
		EventType:  auth.ActivityEventUserProvisioned,
		Email:      "alice@acme.com",
		Org:        auth.DefaultOrg,
		Role:       auth.RoleRoot,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, logger.infos, 1)
	assert.Equal(t, "oauth2 provisioning event", logger.infos[0])
	assert.Contains(t, logger.args[0], "alice@acme.com")
	assert.Contains(t, logger.args[0], string(auth.ActivityEventUserProvisioned))
}
