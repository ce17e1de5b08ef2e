package oauth2ware

import (
	"context"
	"strings"

	auth "github.com/goliatone/go-auth-oauth2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup = "header:" + router.HeaderAuthorization + ",query:access_token"

	// DefaultIdentityContextKey is the locals key holding the auth.ExternalIdentity
	DefaultIdentityContextKey = "oauth2_identity"
)

// AssertionValidator verifies a raw OAuth2 access token and returns the
// identity it asserts. Implementations own signature and expiry checks.
type AssertionValidator interface {
	Validate(ctx context.Context, rawToken string) (auth.ExternalIdentity, error)
}

// AssertionValidatorFunc adapts a function to AssertionValidator
type AssertionValidatorFunc func(ctx context.Context, rawToken string) (auth.ExternalIdentity, error)

func (f AssertionValidatorFunc) Validate(ctx context.Context, rawToken string) (auth.ExternalIdentity, error) {
	return f(ctx, rawToken)
}

type Config struct {
	Filter       func(router.Context) bool
	ErrorHandler router.ErrorHandler

	// Validator turns the raw token into an identity, required
	Validator AssertionValidator
	// Resolver provisions the local user, required
	Resolver auth.IdentityResolver

	// TokenLookup is a comma separated list of "source:name" pairs,
	// e.g. "header:Authorization,query:access_token,cookie:token"
	TokenLookup string
	AuthScheme  string

	IdentityContextKey string
	UserContextKey     string

	// ContextEnricher propagates identity and user to the standard
	// context. Defaults to auth.ContextEnricher.
	ContextEnricher func(c context.Context, identity auth.ExternalIdentity, user *auth.User) context.Context

	Logger auth.Logger
}

// New returns a middleware that validates the OAuth2 access token,
// provisions the caller and stores identity and user in router locals.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			raw, err := ExtractRawTokenFromContext(ctx, extractors)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			identity, err := cfg.Validator.Validate(ctx.Context(), raw)
			if err != nil {
				cfg.Logger.Debug("oauth2 assertion rejected", "error", err)
				return cfg.ErrorHandler(ctx, wrapInvalidAssertion(err))
			}

			if verr := identity.Validate(); verr != nil {
				return cfg.ErrorHandler(ctx, verr.WithTextCode(auth.TextCodeInvalidIdentity))
			}

			user, err := cfg.Resolver.Resolve(ctx.Context(), identity)
			if err != nil {
				cfg.Logger.Error("oauth2 user provisioning failed", "email", identity.Email(), "error", err)
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.IdentityContextKey, identity)
			ctx.Locals(cfg.UserContextKey, user)
			ctx.SetContext(cfg.ContextEnricher(ctx.Context(), identity, user))

			return next(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("AUTH: OAuth2 middleware configuration: Validator is required.")
	}

	if cfg.Resolver == nil {
		panic("AUTH: OAuth2 middleware configuration: Resolver is required.")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = auth.WriteErrorResponse
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.IdentityContextKey == "" {
		cfg.IdentityContextKey = DefaultIdentityContextKey
	}

	if cfg.UserContextKey == "" {
		cfg.UserContextKey = auth.DefaultUserContextKey
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = auth.ContextEnricher
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return cfg
}

func wrapInvalidAssertion(err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.TextCode {
		case auth.TextCodeInvalidAssertion, auth.TextCodeInvalidIdentity:
			return richErr
		}
	}
	return errors.Wrap(err, auth.ErrInvalidAssertion.Category, auth.ErrInvalidAssertion.Message).
		WithTextCode(auth.TextCodeInvalidAssertion).
		WithCode(errors.CodeUnauthorized)
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	for _, extractor := range extractors {
		raw, err := extractor(ctx)
		if raw != "" && err == nil {
			return raw, nil
		}
	}
	return "", auth.ErrMissingAssertion
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

type TokenExtractor func(c router.Context) (string, error)

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	// header:Authorization,query:access_token,cookie:token
	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		}
	}

	return extractors
}

// tokenFromHeader returns a function that extracts token from the request header.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", auth.ErrMissingAssertion
	}
}

// tokenFromQuery returns a function that extracts token from the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", auth.ErrMissingAssertion
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts token from the named cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", auth.ErrMissingAssertion
		}
		return token, nil
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
