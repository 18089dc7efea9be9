// Package services holds the storefront business rules. Services take
// repositories and return either *apperrors.Error for client mistakes or
// wrapped storage errors.
package services

import (
	"errors"
	"strings"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
)

// Caller is the verified identity behind a request. A nil *Caller is an
// anonymous request.
type Caller struct {
	UserID string
	Email  string
	Role   string
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == models.RoleAdmin
}

func (c *Caller) Authenticated() bool {
	return c != nil && c.UserID != ""
}

// Page describes one page of a listing. Limit 0 means everything was returned.
type Page struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"hasMore"`
}

func newPage(total int64, page, limit, returned int) Page {
	if page < 1 {
		page = 1
	}
	p := Page{Total: total, Page: page, Limit: limit}
	if limit > 0 {
		p.HasMore = int64((page-1)*limit+returned) < total
	}
	return p
}

// notFound maps repository.ErrNotFound to a 404 with message and passes every
// other error through.
func notFound(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(message)
	}
	return err
}

func trimmed(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return strings.TrimSpace(*s), true
}
