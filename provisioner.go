package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Provisioner creates or refreshes local users for OAuth2 callers.
//
// Every provisioned user lives in DefaultOrg with ProvisionedRole and is
// flagged external. The lookup and the following writes are not guarded by
// a lock: two concurrent first calls for one identity both take the create
// branch and the store's unique email constraint decides the outcome.
type Provisioner struct {
	users         UserStore
	orgUsers      OrgMembershipStore
	hash          PasswordHasher
	random        RandomGenerator
	fixedRumToken string
	logger        Logger
	activity      ActivitySink
	now           func() time.Time
}

// ProvisionerOption configures a Provisioner
type ProvisionerOption func(*Provisioner)

// NewProvisioner returns a Provisioner backed by the given stores
func NewProvisioner(users UserStore, orgUsers OrgMembershipStore, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		users:    users,
		orgUsers: orgUsers,
		hash:     HashPassword,
		random:   GenerateRandomString,
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	if p.logger == nil {
		p.logger = defaultLogger("auth.provisioner")
	}

	p.activity = normalizeActivitySink(p.activity)

	return p
}

// NewProvisionerFromManager wires a Provisioner to a RepositoryManager
func NewProvisionerFromManager(repo RepositoryManager, opts ...ProvisionerOption) *Provisioner {
	return NewProvisioner(repo.Users(), repo.OrgUsers(), opts...)
}

// WithLogger sets the provisioner logger
func WithLogger(logger Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConfig reads process wide settings
func WithConfig(cfg Config) ProvisionerOption {
	return func(p *Provisioner) {
		if cfg != nil {
			p.fixedRumToken = cfg.GetFixedRumToken()
		}
	}
}

// WithActivitySink records an event after every successful provisioning
func WithActivitySink(sink ActivitySink) ProvisionerOption {
	return func(p *Provisioner) {
		p.activity = sink
	}
}

// WithFixedRumToken makes every new user share the given RUM token
func WithFixedRumToken(token string) ProvisionerOption {
	return func(p *Provisioner) {
		p.fixedRumToken = token
	}
}

// WithPasswordHasher replaces the password hash primitive
func WithPasswordHasher(hasher PasswordHasher) ProvisionerOption {
	return func(p *Provisioner) {
		if hasher != nil {
			p.hash = hasher
		}
	}
}

// WithRandomGenerator replaces the token generator
func WithRandomGenerator(gen RandomGenerator) ProvisionerOption {
	return func(p *Provisioner) {
		if gen != nil {
			p.random = gen
		}
	}
}

// Resolve returns the local user for identity, creating it on first
// sight and refreshing its profile afterwards. Any store failure is
// returned as a storage error and nothing is rolled back.
func (p *Provisioner) Resolve(ctx context.Context, identity ExternalIdentity) (*User, error) {
	email := identity.Email()
	org := DefaultOrg

	existing, err := p.users.Get(ctx, &org, email)
	if err != nil && !isNotFound(err) {
		return nil, NewStorageError(err, OperationLookup, email)
	}

	if err == nil && existing != nil {
		p.logger.Info("updating oauth2 user", "email", email)
		return p.update(ctx, existing, identity)
	}

	p.logger.Info("creating oauth2 user", "email", email)
	return p.create(ctx, email, identity)
}

func (p *Provisioner) update(ctx context.Context, existing *User, identity ExternalIdentity) (*User, error) {
	existing.FirstName = identity.DisplayName
	existing.LastName = ""
	existing.Org = DefaultOrg

	if err := p.users.Update(
		ctx,
		existing.Email,
		existing.FirstName,
		existing.LastName,
		existing.PasswordHash,
		existing.PasswordExt,
	); err != nil {
		return nil, NewStorageError(err, OperationUpdate, existing.Email)
	}

	if err := p.orgUsers.Update(
		ctx,
		DefaultOrg,
		existing.Email,
		existing.Role,
		existing.Token,
		existing.RumToken,
	); err != nil {
		return nil, NewStorageError(err, OperationOrgUpdate, existing.Email)
	}

	p.recordActivity(ctx, ActivityEventUserRefreshed, existing, identity)

	return existing, nil
}

func (p *Provisioner) create(ctx context.Context, email string, identity ExternalIdentity) (*User, error) {
	salt := PlaceholderSalt
	passwordHash := p.hash(PlaceholderPassword, salt)
	token := p.random(TokenLength)
	rumToken := p.rumToken()

	record := &DBUser{
		Email:        email,
		FirstName:    identity.DisplayName,
		LastName:     "",
		PasswordHash: passwordHash,
		Salt:         salt,
		Organizations: []UserOrg{
			{
				Name:     DefaultOrg,
				Token:    token,
				RumToken: stringPtr(rumToken),
				Role:     ProvisionedRole,
			},
		},
		IsExternal:  true,
		PasswordExt: nil,
	}

	if err := p.users.Add(ctx, record); err != nil {
		return nil, NewStorageError(err, OperationInsert, email)
	}

	p.logger.Info("created oauth2 user", "email", email)

	user := &User{
		Email:        email,
		FirstName:    identity.DisplayName,
		LastName:     "",
		PasswordHash: passwordHash,
		Salt:         salt,
		Role:         ProvisionedRole,
		Org:          DefaultOrg,
		Token:        token,
		RumToken:     stringPtr(rumToken),
		IsExternal:   true,
		PasswordExt:  nil,
	}

	p.recordActivity(ctx, ActivityEventUserProvisioned, user, identity)

	return user, nil
}

func (p *Provisioner) recordActivity(ctx context.Context, eventType ActivityEventType, user *User, identity ExternalIdentity) {
	event := ActivityEvent{
		EventType:  eventType,
		Email:      user.Email,
		Org:        user.Org,
		Role:       user.Role,
		Identity:   identity,
		OccurredAt: p.now().UTC(),
	}

	if err := p.activity.Record(ctx, event); err != nil {
		p.logger.Warn("activity sink failed", "event", string(eventType), "email", user.Email, "error", err)
	}
}

func (p *Provisioner) rumToken() string {
	if p.fixedRumToken != "" {
		return p.fixedRumToken
	}
	return RumTokenPrefix + p.random(TokenLength)
}

func isNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.IsNotFound(err)
}

var _ IdentityResolver = (*Provisioner)(nil)
