package ports

import "github.com/slconcert/theatre-system/internal/core/domain"

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID   string
	Username string
	Role     string
}

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// IsStaff reports whether the principal may act on other customers' behalf.
func (p Principal) IsStaff() bool { return p.Role == domain.RoleAdmin || p.Role == domain.RoleStaff }

// Page carries skip/limit paging for list and search calls.
type Page struct {
	Skip  int
	Limit int
}

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
