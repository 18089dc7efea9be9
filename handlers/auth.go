package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/logger"
	"github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/services"
	"go.uber.org/zap"
)

// UserCookie carries the public profile for the storefront scripts. It is
// never used for authorization.
const UserCookie = "user"

type publicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func (h *Handler) Signup(c echo.Context) error {
	var in services.SignupInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.svc.Auth.Signup(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Account created successfully",
		"user":    user,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var in services.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	session, err := h.svc.Auth.Login(ctx, in)
	if err != nil {
		return respondError(c, err)
	}

	h.setSessionCookies(c, session)
	logger.FromEcho(c).Info("User logged in", zap.String("user_id", session.User.ID.Hex()))
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) setSessionCookies(c echo.Context, session *services.Session) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	u := session.User
	raw, err := json.Marshal(publicUser{ID: u.ID.Hex(), Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role})
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     UserCookie,
		Value:    url.QueryEscape(string(raw)),
		Path:     "/",
		Expires:  session.ExpiresAt,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	for _, name := range []string{middleware.TokenCookie, UserCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: name == middleware.TokenCookie,
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) Session(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.svc.Auth.Profile(ctx, middleware.CallerFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]*models.User{"user": user})
}
