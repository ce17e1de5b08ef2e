package auth

import (
	"context"
	"database/sql"
	"log"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	OrgUsers() OrgUsers
}

type mngr struct {
	db       *bun.DB
	users    Users
	orgUsers OrgUsers
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		users:    NewUsersRepository(db),
		orgUsers: NewOrgUsersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized", errors.CategoryInternal).
			WithTextCode(TextCodeRepositoryMissing)
	}

	if m.users == nil {
		return errors.New("repository users should be initialized", errors.CategoryInternal).
			WithTextCode(TextCodeRepositoryMissing)
	}

	if m.orgUsers == nil {
		return errors.New("repository orgUsers should be initialized", errors.CategoryInternal).
			WithTextCode(TextCodeRepositoryMissing)
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) OrgUsers() OrgUsers {
	return m.orgUsers
}
