package oauth2ware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/goliatone/go-errors"
)

// Default claim names carrying the external identity
const (
	DefaultAccountClaim     = "account"
	DefaultTenantClaim      = "tenant_id"
	DefaultDisplayNameClaim = "realname"
)

type SigningKey struct {
	JWTAlg string
	Key    any
}

// JWTValidatorConfig configures JWTValidator
type JWTValidatorConfig struct {
	SigningKey  SigningKey
	SigningKeys map[string]SigningKey
	JWKSetURLs  []string
	KeyFunc     jwt.Keyfunc

	Issuer   string
	Audience string

	AccountClaim     string
	TenantClaim      string
	DisplayNameClaim string

	Logger auth.Logger
}

// JWTValidator is an AssertionValidator for JWT access tokens
type JWTValidator struct {
	keyFunc jwt.Keyfunc
	parser  *jwt.Parser
	config  JWTValidatorConfig
}

var _ AssertionValidator = (*JWTValidator)(nil)

// NewJWTValidator builds a validator using, in order of precedence,
// KeyFunc, JWKSetURLs (plus SigningKeys), SigningKeys or SigningKey.
func NewJWTValidator(cfg JWTValidatorConfig) (*JWTValidator, error) {
	if cfg.AccountClaim == "" {
		cfg.AccountClaim = DefaultAccountClaim
	}
	if cfg.TenantClaim == "" {
		cfg.TenantClaim = DefaultTenantClaim
	}
	if cfg.DisplayNameClaim == "" {
		cfg.DisplayNameClaim = DefaultDisplayNameClaim
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	kf := cfg.KeyFunc
	if kf == nil {
		var err error
		kf, err = buildKeyFunc(cfg)
		if err != nil {
			return nil, err
		}
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.SigningKey.JWTAlg != "" && len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 {
		opts = append(opts, jwt.WithValidMethods([]string{cfg.SigningKey.JWTAlg}))
	}

	return &JWTValidator{
		keyFunc: kf,
		parser:  jwt.NewParser(opts...),
		config:  cfg,
	}, nil
}

// Validate parses rawToken and maps its claims to an identity
func (v *JWTValidator) Validate(_ context.Context, rawToken string) (auth.ExternalIdentity, error) {
	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(rawToken, claims, v.keyFunc); err != nil {
		return auth.ExternalIdentity{}, wrapInvalidAssertion(err)
	}

	identity := auth.ExternalIdentity{
		Account:     claimString(claims, v.config.AccountClaim),
		TenantID:    claimString(claims, v.config.TenantClaim),
		DisplayName: claimString(claims, v.config.DisplayNameClaim),
	}

	if verr := identity.Validate(); verr != nil {
		return auth.ExternalIdentity{}, verr.WithTextCode(auth.TextCodeInvalidIdentity)
	}

	return identity, nil
}

func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func buildKeyFunc(cfg JWTValidatorConfig) (jwt.Keyfunc, error) {
	if len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 {
		if cfg.SigningKey.Key == nil {
			return nil, errors.New("oauth2 validator: one of KeyFunc, JWKSetURLs, SigningKeys or SigningKey is required", errors.CategoryBadInput)
		}
		return signingKeyFunc(cfg.SigningKey), nil
	}

	var givenKeys map[string]keyfunc.GivenKey
	if len(cfg.SigningKeys) > 0 {
		givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
		for kid, key := range cfg.SigningKeys {
			givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
				Algorithm: key.JWTAlg,
			})
		}
	}

	if len(cfg.JWKSetURLs) == 0 {
		return keyfunc.NewGiven(givenKeys).Keyfunc, nil
	}

	return multiKeyfunc(givenKeys, cfg.JWKSetURLs, cfg.Logger)
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwkSetURLs []string, logger auth.Logger) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys, logger)
	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}
	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to get JWK set URLs")
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey, logger auth.Logger) keyfunc.Options {
	if logger == nil {
		logger = noopLogger{}
	}
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to do a background refresh of JWK set", "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing alg", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}
