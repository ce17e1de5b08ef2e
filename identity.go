package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// ExternalIdentity is produced by an OAuth2 validator once the
// assertion has been verified. It contains facts only.
type ExternalIdentity struct {
	Account     string `json:"account"`
	TenantID    string `json:"tenant_id"`
	DisplayName string `json:"display_name"`
}

// Email returns the canonical local email for the identity
func (i ExternalIdentity) Email() string {
	return CanonicalEmail(i.Account, i.TenantID)
}

// Validate checks the identity carries the fields needed to build
// an email. Resolve does not call it; transports should.
func (i ExternalIdentity) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&i,
			validation.Field(&i.Account, validation.Required),
			validation.Field(&i.TenantID, validation.Required),
		)
	}, "invalid external identity")
}

// CanonicalEmail maps an account and tenant to "{account}@{tenant}.com".
// Inputs are used as is, malformed fields produce a malformed email.
func CanonicalEmail(account, tenantID string) string {
	return fmt.Sprintf("%s@%s.com", account, tenantID)
}
