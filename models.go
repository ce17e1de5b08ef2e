package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultOrg is the organization every OAuth2 user is placed in
const DefaultOrg = "default"

// User is the local user as seen by the rest of the system. It combines
// the users row with the membership for a single organization.
type User struct {
	Email        string   `json:"email"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	PasswordHash string   `json:"password_hash,omitempty"`
	Salt         string   `json:"salt,omitempty"`
	Role         UserRole `json:"role"`
	Org          string   `json:"org"`
	Token        string   `json:"token"`
	RumToken     *string  `json:"rum_token,omitempty"`
	IsExternal   bool     `json:"is_external"`
	PasswordExt  *string  `json:"password_ext,omitempty"`
}

// GetRumToken returns the RUM token or an empty string
func (u *User) GetRumToken() string {
	if u == nil || u.RumToken == nil {
		return ""
	}
	return *u.RumToken
}

// UserOrg is a single organization binding of a new user
type UserOrg struct {
	Name     string   `json:"name"`
	Token    string   `json:"token"`
	RumToken *string  `json:"rum_token,omitempty"`
	Role     UserRole `json:"role"`
}

// DBUser describes a user to be inserted together with
// all of its organization memberships.
type DBUser struct {
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	PasswordHash  string    `json:"password_hash"`
	Salt          string    `json:"salt"`
	Organizations []UserOrg `json:"organizations"`
	IsExternal    bool      `json:"is_external"`
	PasswordExt   *string   `json:"password_ext,omitempty"`
}

// UserRecord is the users table row
type UserRecord struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name"`
	LastName      string     `bun:"last_name,notnull" json:"last_name"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	Salt          string     `bun:"salt,notnull" json:"salt,omitempty"`
	IsExternal    bool       `bun:"is_external,notnull" json:"is_external"`
	PasswordExt   *string    `bun:"password_ext" json:"password_ext,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// OrgUserRecord binds a user email to an organization with a role and tokens
type OrgUserRecord struct {
	bun.BaseModel `bun:"table:org_users,alias:ou"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Org           string     `bun:"org,notnull" json:"org"`
	Email         string     `bun:"email,notnull" json:"email"`
	Role          UserRole   `bun:"role,notnull" json:"role"`
	Token         string     `bun:"token,notnull" json:"token"`
	RumToken      *string    `bun:"rum_token" json:"rum_token,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

func newUserFromRecords(rec *UserRecord, membership *OrgUserRecord) *User {
	user := &User{
		Email:        rec.Email,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		PasswordHash: rec.PasswordHash,
		Salt:         rec.Salt,
		IsExternal:   rec.IsExternal,
		PasswordExt:  rec.PasswordExt,
	}

	if membership != nil {
		user.Org = membership.Org
		user.Role = membership.Role
		user.Token = membership.Token
		user.RumToken = membership.RumToken
	}

	return user
}

func stringPtr(s string) *string {
	return &s
}
