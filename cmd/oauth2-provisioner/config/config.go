package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type BaseConfig struct {
	Name        string      `koanf:"name" json:"name"`
	Server      Server      `koanf:"server" json:"server"`
	Persistence Persistence `koanf:"persistence" json:"persistence"`
	Provisioner Provisioner `koanf:"provisioner" json:"provisioner"`
	OAuth2      OAuth2      `koanf:"oauth2" json:"oauth2"`
}

type Server struct {
	Address    string `koanf:"address" json:"address"`
	PathPrefix string `koanf:"path_prefix" json:"path_prefix"`
}

type Persistence struct {
	Driver                string `koanf:"driver" json:"driver"`
	DSN                   string `koanf:"dsn" json:"dsn"`
	Database              string `koanf:"database" json:"database"`
	Debug                 bool   `koanf:"debug" json:"debug"`
	PingTimeoutExpression string `koanf:"ping_timeout" json:"ping_timeout"`
	OtelIdentifier        string `koanf:"otel_identifier" json:"otel_identifier"`
}

type Provisioner struct {
	FixedRumToken string `koanf:"fixed_rum_token" json:"fixed_rum_token"`
}

type OAuth2 struct {
	TokenLookup      string   `koanf:"token_lookup" json:"token_lookup"`
	SigningKey       string   `koanf:"signing_key" json:"signing_key"`
	SigningAlg       string   `koanf:"signing_alg" json:"signing_alg"`
	JWKSetURLs       []string `koanf:"jwk_set_urls" json:"jwk_set_urls"`
	Issuer           string   `koanf:"issuer" json:"issuer"`
	Audience         string   `koanf:"audience" json:"audience"`
	AccountClaim     string   `koanf:"account_claim" json:"account_claim"`
	TenantClaim      string   `koanf:"tenant_claim" json:"tenant_claim"`
	DisplayNameClaim string   `koanf:"display_name_claim" json:"display_name_claim"`
}

func (a BaseConfig) Validate() error {
	err := validation.ValidateStruct(&a,
		validation.Field(&a.Persistence, validation.By(func(any) error {
			return validation.Validate(a.Persistence.DSN, validation.Required)
		})),
		validation.Field(&a.OAuth2, validation.By(func(any) error {
			if strings.TrimSpace(a.OAuth2.SigningKey) == "" && len(a.OAuth2.JWKSetURLs) == 0 {
				return fmt.Errorf("one of signing_key or jwk_set_urls is required")
			}
			return nil
		})),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid configuration")
	}
	return nil
}

func (a BaseConfig) GetServer() Server {
	return a.Server
}

func (a BaseConfig) GetPersistence() Persistence {
	return a.Persistence
}

func (a BaseConfig) GetProvisioner() Provisioner {
	return a.Provisioner
}

func (a BaseConfig) GetOAuth2() OAuth2 {
	return a.OAuth2
}

func (s Server) GetAddress() string {
	if s.Address == "" {
		return ":8572"
	}
	return s.Address
}

func (s Server) GetPathPrefix() string {
	if s.PathPrefix == "" {
		return "/auth"
	}
	return s.PathPrefix
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return sqliteshim.ShimName
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	return p.DSN
}

// GetServer returns the DSN, sqlite has no separate server address
func (p Persistence) GetServer() string {
	return p.DSN
}

func (p Persistence) GetDatabase() string {
	if p.Database == "" {
		return "oauth2"
	}
	return p.Database
}

func (p Persistence) GetOtelIdentifier() string {
	return p.OtelIdentifier
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

// GetFixedRumToken makes Provisioner usable as auth.Config
func (p Provisioner) GetFixedRumToken() string {
	return strings.TrimSpace(p.FixedRumToken)
}

func (o OAuth2) GetTokenLookup() string {
	return o.TokenLookup
}

func (o OAuth2) GetSigningKey() string {
	return o.SigningKey
}

func (o OAuth2) GetSigningAlg() string {
	if o.SigningAlg == "" {
		return "HS256"
	}
	return o.SigningAlg
}

func (o OAuth2) GetJWKSetURLs() []string {
	return o.JWKSetURLs
}

func (o OAuth2) GetIssuer() string {
	return o.Issuer
}

func (o OAuth2) GetAudience() string {
	return o.Audience
}

func (o OAuth2) GetAccountClaim() string {
	return o.AccountClaim
}

func (o OAuth2) GetTenantClaim() string {
	return o.TenantClaim
}

func (o OAuth2) GetDisplayNameClaim() string {
	return o.DisplayNameClaim
}
