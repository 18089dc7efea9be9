package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/services"
	"github.com/scrubline/scrubline-backend-go/utils"
)

const (
	// TokenCookie holds the session JWT set at login.
	TokenCookie = "token"
	callerKey   = "caller"
)

// Auth verifies session tokens from the Authorization header or the token
// cookie and stores the resulting caller on the echo context.
type Auth struct {
	jwt *utils.JWTManager
}

func NewAuth(jwt *utils.JWTManager) *Auth {
	return &Auth{jwt: jwt}
}

// CallerFrom returns the verified caller, nil for anonymous requests.
func CallerFrom(c echo.Context) *services.Caller {
	caller, _ := c.Get(callerKey).(*services.Caller)
	return caller
}

func tokenFrom(c echo.Context) (string, error) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", apperrors.Unauthorized("Invalid authorization header format")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", nil
}

func (a *Auth) authenticate(c echo.Context) (*services.Caller, error) {
	token, err := tokenFrom(c)
	if err != nil || token == "" {
		return nil, err
	}
	claims, err := a.jwt.ValidateJWT(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	return &services.Caller{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// Optional attaches the caller when a valid token is present and lets
// anonymous requests through. A malformed or expired token is rejected.
func (a *Auth) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := a.authenticate(c)
			if err != nil {
				return err
			}
			if caller != nil {
				c.Set(callerKey, caller)
			}
			return next(c)
		}
	}
}

func (a *Auth) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := a.authenticate(c)
			if err != nil {
				return err
			}
			if caller == nil {
				return apperrors.Unauthorized("Missing authorization header")
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// RequireAdmin must run after Required.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !CallerFrom(c).IsAdmin() {
			return apperrors.Forbidden("Admin access required")
		}
		return next(c)
	}
}

// AdminPages guards the static back-office pages. Only the verified token
// cookie is trusted. Browsers without one are sent to loginPath, which is
// itself served without a check.
func (a *Auth) AdminPages(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == loginPath {
				return next(c)
			}
			cookie, err := c.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusFound, loginPath)
			}
			claims, err := a.jwt.ValidateJWT(cookie.Value)
			if err != nil {
				return c.Redirect(http.StatusFound, loginPath)
			}
			caller := &services.Caller{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
			if !caller.IsAdmin() {
				return apperrors.Forbidden("Admin access required")
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}
