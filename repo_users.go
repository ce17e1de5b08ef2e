package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	UserStore

	Records() repository.Repository[*UserRecord]
	GetTx(ctx context.Context, tx bun.IDB, org *string, email string) (*User, error)
	AddTx(ctx context.Context, tx bun.IDB, record *DBUser) error
	UpdateTx(ctx context.Context, tx bun.IDB, email, firstName, lastName, passwordHash string, passwordExt *string) error
	CountByEmail(ctx context.Context, email string) (int, error)
}

type users struct {
	records repository.Repository[*UserRecord]
	db      *bun.DB
}

var (
	_ Users     = (*users)(nil)
	_ UserStore = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*UserRecord](db, repository.ModelHandlers[*UserRecord]{
		NewRecord: func() *UserRecord { return &UserRecord{} },
		GetID: func(u *UserRecord) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *UserRecord, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		records: repo,
		db:      db,
	}
}

// Records exposes the generic repository over the users table
func (a *users) Records() repository.Repository[*UserRecord] {
	return a.records
}

// Get finds a user by email. When org is given the user must be a
// member of that organization; otherwise the oldest membership is used.
func (a *users) Get(ctx context.Context, org *string, email string) (*User, error) {
	return a.GetTx(ctx, a.db, org, email)
}

func (a *users) GetTx(ctx context.Context, tx bun.IDB, org *string, email string) (*User, error) {
	record := &UserRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
			return nil, userNotFound(org, email)
		}
		return nil, err
	}

	membership := &OrgUserRecord{}
	q := tx.NewSelect().
		Model(membership).
		Where("?TableAlias.email = ?", email)

	if org != nil {
		q = q.Where("?TableAlias.org = ?", *org)
	}

	err = q.
		OrderExpr("?TableAlias.created_at ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if org != nil {
			return nil, userNotFound(org, email)
		}
		membership = nil
	}

	if membership != nil && !membership.Role.IsValid() {
		return nil, NewUnknownRoleError(membership.Role, membership.Org, email)
	}

	return newUserFromRecords(record, membership), nil
}

// Add inserts the user and all of its memberships in one transaction
func (a *users) Add(ctx context.Context, record *DBUser) error {
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return a.AddTx(ctx, tx, record)
	})
}

func (a *users) AddTx(ctx context.Context, tx bun.IDB, record *DBUser) error {
	if record == nil {
		return errors.New("users: record is required")
	}

	now := time.Now()
	userRecord := &UserRecord{
		ID:           uuid.New(),
		Email:        record.Email,
		FirstName:    record.FirstName,
		LastName:     record.LastName,
		PasswordHash: record.PasswordHash,
		Salt:         record.Salt,
		IsExternal:   record.IsExternal,
		PasswordExt:  record.PasswordExt,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}

	if _, err := a.records.CreateTx(ctx, tx, userRecord); err != nil {
		return err
	}

	if len(record.Organizations) == 0 {
		return nil
	}

	memberships := make([]*OrgUserRecord, 0, len(record.Organizations))
	for _, org := range record.Organizations {
		memberships = append(memberships, &OrgUserRecord{
			ID:        uuid.New(),
			Org:       org.Name,
			Email:     record.Email,
			Role:      org.Role,
			Token:     org.Token,
			RumToken:  org.RumToken,
			CreatedAt: &now,
			UpdatedAt: &now,
		})
	}

	_, err := tx.NewInsert().
		Model(&memberships).
		Exec(ctx)

	return err
}

// Update overwrites the profile and password columns of the user
func (a *users) Update(ctx context.Context, email, firstName, lastName, passwordHash string, passwordExt *string) error {
	return a.UpdateTx(ctx, a.db, email, firstName, lastName, passwordHash, passwordExt)
}

func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, email, firstName, lastName, passwordHash string, passwordExt *string) error {
	now := time.Now()
	record := &UserRecord{
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		PasswordExt:  passwordExt,
		UpdatedAt:    &now,
	}

	res, err := tx.NewUpdate().
		Model(record).
		Column("first_name", "last_name", "password_hash", "password_ext", "updated_at").
		Where("?TableAlias.email = ?", email).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return userNotFound(nil, email)
	}

	return nil
}

// CountByEmail returns how many users are stored under email
func (a *users) CountByEmail(ctx context.Context, email string) (int, error) {
	return a.db.NewSelect().
		Model((*UserRecord)(nil)).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Count(ctx)
}

func userNotFound(org *string, email string) error {
	meta := map[string]any{
		"email": email,
	}
	if org != nil {
		meta["org"] = *org
	}
	return repository.NewRecordNotFound().WithMetadata(meta)
}
