package handlers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/logger"
	"github.com/scrubline/scrubline-backend-go/services"
	"github.com/scrubline/scrubline-backend-go/storage"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Orders    *services.OrderService
	Addresses *services.AddressService
	Wishlist  *services.WishlistService
	Reviews   *services.ReviewService
	Catalog   *services.CatalogService
	Auth      *services.AuthService
	Analytics *services.AnalyticsService
	Feedback  *services.FeedbackService
	Settings  *services.SettingsService
	Uploader  *storage.Uploader
	DB        Pinger
}

type Options struct {
	// LegacyOrderQuery lets POST /api/orders answer the old lookup body.
	LegacyOrderQuery bool
	Timeout          time.Duration
	SecureCookies    bool
}

type Handler struct {
	svc  Services
	opts Options
}

func New(svc Services, opts Options) *Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Handler{svc: svc, opts: opts}
}

func (h *Handler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.opts.Timeout)
}

// respondError logs server-side failures and hands every error to echo's
// error handler, which renders it as {"error": "..."}.
func respondError(c echo.Context, err error) error {
	if code, _ := apperrors.Status(err); code >= http.StatusInternalServerError {
		logger.FromEcho(c).Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return err
}

func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperrors.BadRequest("Invalid request format")
	}
	if err := c.Validate(v); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.BadRequest(err.Error())
	}
	return nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil && v >= 0 {
		return v
	}
	return fallback
}

// Validator adapts go-playground/validator to echo, reporting the first
// failing field by its JSON name.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return nil
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.BadRequest(fe.Field() + " is required")
	case "email":
		return apperrors.BadRequest(fe.Field() + " must be a valid email")
	case "min", "gte":
		return apperrors.BadRequest(fe.Field() + " must be at least " + fe.Param())
	case "max", "lte":
		return apperrors.BadRequest(fe.Field() + " must be at most " + fe.Param())
	}
	return apperrors.BadRequest(fe.Field() + " is invalid")
}
