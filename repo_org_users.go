package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// OrgUsers stores organization memberships
type OrgUsers interface {
	OrgMembershipStore

	Get(ctx context.Context, org, email string) (*OrgUserRecord, error)
	ListByEmail(ctx context.Context, email string) ([]*OrgUserRecord, error)
	UpdateTx(ctx context.Context, tx bun.IDB, org, email string, role UserRole, token string, rumToken *string) error
}

type orgUsers struct {
	db *bun.DB
}

var _ OrgUsers = (*orgUsers)(nil)

// NewOrgUsersRepository creates a new bun backed membership store
func NewOrgUsersRepository(db *bun.DB) OrgUsers {
	return &orgUsers{db: db}
}

func (r *orgUsers) Get(ctx context.Context, org, email string) (*OrgUserRecord, error) {
	record := &OrgUserRecord{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.org = ? AND ?TableAlias.email = ?", org, email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"org":   org,
				"email": email,
			})
		}
		return nil, err
	}
	return record, nil
}

func (r *orgUsers) ListByEmail(ctx context.Context, email string) ([]*OrgUserRecord, error) {
	records := []*OrgUserRecord{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.email = ?", email).
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return records, nil
}

// Update rewrites role and tokens of an existing membership. It never
// creates a membership; updating a missing one is a no-op. Roles outside
// GetAllRoles are rejected before anything is written.
func (r *orgUsers) Update(ctx context.Context, org, email string, role UserRole, token string, rumToken *string) error {
	return r.UpdateTx(ctx, r.db, org, email, role, token, rumToken)
}

func (r *orgUsers) UpdateTx(ctx context.Context, tx bun.IDB, org, email string, role UserRole, token string, rumToken *string) error {
	if !role.IsValid() {
		return NewUnknownRoleError(role, org, email)
	}

	now := time.Now()
	record := &OrgUserRecord{
		Role:      role,
		Token:     token,
		RumToken:  rumToken,
		UpdatedAt: &now,
	}

	_, err := tx.NewUpdate().
		Model(record).
		Column("role", "token", "rum_token", "updated_at").
		Where("?TableAlias.org = ? AND ?TableAlias.email = ?", org, email).
		Exec(ctx)

	return err
}
