// Package auth provisions local users for callers authenticated by an
// external OAuth2 identity provider.
//
// Identity mapping:
//   - An ExternalIdentity (account, tenant id, display name) maps to the
//     local email "{account}@{tenant_id}.com". The mapping is not validated;
//     transports call ExternalIdentity.Validate before provisioning.
//
// Provisioning:
//   - Provisioner.Resolve looks the email up in the "default" organization.
//     Unknown users are created with role root, a placeholder password hash,
//     a random API token and a RUM token (fixed per process when configured).
//     Known users get their first name refreshed from the display name while
//     role, tokens and password stay untouched.
//   - Store failures surface as storage errors (see IsStorageError). There is
//     no locking and no rollback; the unique email column settles concurrent
//     first logins.
//
// Persistence:
//   - Users and OrgUsers are bun backed stores over the users and org_users
//     tables. Migrate applies the embedded migrations.
//
// HTTP:
//   - middleware/oauth2ware validates the access token and provisions the
//     caller. HTTPController serves the login and userinfo routes.
package auth
