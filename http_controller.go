package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// DefaultUserContextKey is the router locals key holding the provisioned *User
const DefaultUserContextKey = "oauth2_user"

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the OAuth2 HTTP controller.
type HTTPConfig struct {
	// PathPrefix for routes (default: "/auth")
	PathPrefix string

	// UserContextKey is the router locals key the middleware stores the user under
	UserContextKey string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// HTTPController exposes the provisioned user over HTTP. It expects the
// OAuth2 middleware to run first and place the user in router locals.
type HTTPController struct {
	config HTTPConfig
	logger Logger
}

// NewHTTPController creates a new OAuth2 HTTP controller.
func NewHTTPController(cfg HTTPConfig, logger ...Logger) *HTTPController {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/auth"
	}
	if cfg.UserContextKey == "" {
		cfg.UserContextKey = DefaultUserContextKey
	}

	c := &HTTPController{config: cfg}
	if len(logger) > 0 && logger[0] != nil {
		c.logger = logger[0]
	} else {
		c.logger = defaultLogger("auth.http")
	}

	return c
}

// RegisterRoutes registers the login and userinfo routes behind mw.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Post(c.config.PathPrefix+"/oauth2-login", c.Login, mw...)
	group.Get(c.config.PathPrefix+"/userinfo", c.UserInfo, mw...)
}

// Login answers an OAuth2 login once the caller has been provisioned.
func (c *HTTPController) Login(ctx router.Context) error {
	user, err := UserFromRouterContext(ctx, c.config.UserContextKey)
	if err != nil {
		return c.handleError(ctx, err)
	}

	c.logger.Debug("oauth2 login", "email", user.Email)

	return ctx.JSON(router.StatusOK, map[string]any{
		"status": true,
		"user":   NewUserInfo(user),
	})
}

// UserInfo returns the provisioned user for the current access token.
func (c *HTTPController) UserInfo(ctx router.Context) error {
	user, err := UserFromRouterContext(ctx, c.config.UserContextKey)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserInfo(user))
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}
	return WriteErrorResponse(ctx, err)
}

// UserFromRouterContext returns the user stored by the OAuth2 middleware
func UserFromRouterContext(ctx router.Context, key string) (*User, error) {
	if key == "" {
		key = DefaultUserContextKey
	}

	if user, ok := ctx.Locals(key).(*User); ok && user != nil {
		return user, nil
	}

	if user, ok := FromContext(ctx.Context()); ok {
		return user, nil
	}

	return nil, ErrUserNotInContext
}

// StatusForError maps provisioning errors to HTTP status codes
func StatusForError(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.TextCode {
	case TextCodeMissingAssertion, TextCodeInvalidIdentity:
		return router.StatusBadRequest
	case TextCodeInvalidAssertion, TextCodeUserNotInContext:
		return router.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse renders err as a JSON error body
func WriteErrorResponse(ctx router.Context, err error) error {
	status := StatusForError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}

	return ctx.JSON(status, map[string]string{
		"error": message,
	})
}
