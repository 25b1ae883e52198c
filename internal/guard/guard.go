// Package guard decides whether a screen may be shown to the current identity.
package guard

import (
	"github.com/veterimap/veterimap/internal/session"
	"github.com/veterimap/veterimap/pkg/domain"
)

// Outcome is what the caller should do with a navigation.
type Outcome int

const (
	Render Outcome = iota
	Placeholder
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Placeholder:
		return "placeholder"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Requirement is what a route demands of the identity. An empty Roles set
// admits any authenticated user.
type Requirement struct {
	Roles    []domain.Role
	MinLevel int
}

// Public is a route anyone can see. A nil requirement means the route is not
// guarded at all: Check renders it even while the session is loading.
var Public *Requirement

// Authenticated returns a requirement for the given roles.
func Authenticated(roles ...domain.Role) *Requirement {
	return &Requirement{Roles: roles}
}

// WithMinLevel returns a copy of r that also requires access level n.
func (r Requirement) WithMinLevel(n int) *Requirement {
	r.MinLevel = n
	return &r
}

// Decision is the result of a guard check.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Guard holds the redirect destinations.
type Guard struct {
	Login    string
	Home     string
	Fallback string
}

// Default returns the destinations used by the app.
func Default() Guard {
	return Guard{Login: "/login", Home: "/", Fallback: "/vet"}
}

// Check decides the outcome for identity id against req. A nil req is a
// public route and always renders. The checks run in a fixed order: loading,
// then authentication, then role, then access level.
func (g Guard) Check(id *session.Identity, loading bool, req *Requirement) Decision {
	if req == nil {
		return Decision{Outcome: Render}
	}
	if loading {
		return Decision{Outcome: Placeholder}
	}
	if id == nil {
		return Decision{Outcome: Redirect, Target: g.Login}
	}
	if len(req.Roles) > 0 && !id.HasRole(req.Roles...) {
		return Decision{Outcome: Redirect, Target: g.Home}
	}
	if req.MinLevel > id.AccessLevel {
		return Decision{Outcome: Redirect, Target: g.Fallback}
	}
	return Decision{Outcome: Render}
}
