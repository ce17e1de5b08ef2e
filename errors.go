package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeStorage           = "PROVISION_STORAGE_ERROR"
	TextCodeMissingAssertion  = "OAUTH2_MISSING_ASSERTION"
	TextCodeInvalidAssertion  = "OAUTH2_INVALID_ASSERTION"
	TextCodeUserNotInContext  = "OAUTH2_USER_NOT_IN_CONTEXT"
	TextCodeInvalidIdentity   = "OAUTH2_INVALID_IDENTITY"
	TextCodeRepositoryMissing = "REPOSITORY_NOT_INITIALIZED"
	TextCodeUnknownRole       = "ORG_MEMBERSHIP_UNKNOWN_ROLE"
)

// Storage operations reported in error metadata
const (
	OperationLookup    = "lookup"
	OperationInsert    = "insert"
	OperationUpdate    = "update"
	OperationOrgUpdate = "org_update"
)

// ErrMissingAssertion is returned when a request carries no access token
var ErrMissingAssertion = errors.New("missing or malformed oauth2 access token", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingAssertion).
	WithCode(errors.CodeBadRequest)

// ErrInvalidAssertion is returned when the access token was rejected
var ErrInvalidAssertion = errors.New("invalid oauth2 access token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidAssertion).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotInContext is returned when no provisioned user was stored in the request
var ErrUserNotInContext = errors.New("no provisioned user in request context", errors.CategoryAuth).
	WithTextCode(TextCodeUserNotInContext).
	WithCode(errors.CodeUnauthorized)

// NewUnknownRoleError reports a membership role outside GetAllRoles
func NewUnknownRoleError(role UserRole, org, email string) error {
	return errors.New("unknown organization role", errors.CategoryValidation).
		WithTextCode(TextCodeUnknownRole).
		WithMetadata(map[string]any{
			"role":  role.String(),
			"org":   org,
			"email": email,
		})
}

// NewStorageError wraps a user or org-membership store failure
func NewStorageError(err error, operation, email string) error {
	return errors.Wrap(err, errors.CategoryInternal, "oauth2 user provisioning storage failure").
		WithTextCode(TextCodeStorage).
		WithMetadata(map[string]any{
			"operation": operation,
			"email":     email,
		})
}

// IsStorageError reports whether err came from a failed store call
func IsStorageError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}

	return richErr.TextCode == TextCodeStorage
}
