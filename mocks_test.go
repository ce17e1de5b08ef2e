package auth_test

import (
	"context"
	"sync"

	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Get(ctx context.Context, org *string, email string) (*auth.User, error) {
	args := m.Called(ctx, org, email)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Add(ctx context.Context, record *auth.DBUser) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockUserStore) Update(ctx context.Context, email, firstName, lastName, passwordHash string, passwordExt *string) error {
	args := m.Called(ctx, email, firstName, lastName, passwordHash, passwordExt)
	return args.Error(0)
}

// MockOrgStore implements auth.OrgMembershipStore
type MockOrgStore struct {
	mock.Mock
}

func (m *MockOrgStore) Update(ctx context.Context, org, email string, role auth.UserRole, token string, rumToken *string) error {
	args := m.Called(ctx, org, email, role, token, rumToken)
	return args.Error(0)
}

type mockConfig struct {
	fixedRumToken string
}

func (c mockConfig) GetFixedRumToken() string {
	return c.fixedRumToken
}

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }

func (l *captureLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, message: msg, args: args})
}

func (l *captureLogger) snapshot() []logCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logCall(nil), l.calls...)
}

// sequenceGenerator repeats one letter per call, "a" then "b" and so on
func sequenceGenerator() auth.RandomGenerator {
	n := 0
	return func(length int) string {
		n++
		out := []byte{}
		for len(out) < length {
			out = append(out, byte('a'+(n-1)%26))
		}
		return string(out)
	}
}
