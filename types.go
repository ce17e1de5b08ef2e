package auth

import (
	"context"

	"github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger used across the package. Any
// glog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// UserStore is the persistent store for local users
type UserStore interface {
	Get(ctx context.Context, org *string, email string) (*User, error)
	Add(ctx context.Context, record *DBUser) error
	Update(ctx context.Context, email, firstName, lastName, passwordHash string, passwordExt *string) error
}

// OrgMembershipStore keeps the per organization role and tokens
type OrgMembershipStore interface {
	Update(ctx context.Context, org, email string, role UserRole, token string, rumToken *string) error
}

// IdentityResolver maps a validated external identity to a local user
type IdentityResolver interface {
	Resolve(ctx context.Context, identity ExternalIdentity) (*User, error)
}

// PasswordHasher derives a password hash from a password and salt
type PasswordHasher func(password, salt string) string

func defaultLogger(name string) Logger {
	return glog.NewLogger(
		glog.WithName("auth"),
		glog.WithAddSource(false),
	).GetLogger(name)
}
