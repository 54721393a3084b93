package rbac

import (
	"context"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/auth"
)

// Policy maps a role to its grants. A grant is an exact permission such as
// "quiz:view", a prefix ending in "*" such as "attempt:*", or "*" alone.
type Policy map[string][]string

type grants struct {
	all      bool
	exact    map[string]struct{}
	prefixes []string
}

func (g grants) allows(perm string) bool {
	if g.all {
		return true
	}
	if _, ok := g.exact[perm]; ok {
		return true
	}
	for _, p := range g.prefixes {
		if strings.HasPrefix(perm, p) {
			return true
		}
	}
	return false
}

// Checker answers permission questions against a Policy compiled once at
// construction.
type Checker struct {
	roles map[string]grants
}

// NewChecker compiles p. A nil policy selects DefaultPolicy.
func NewChecker(p Policy) *Checker {
	if p == nil {
		p = DefaultPolicy
	}
	c := &Checker{roles: make(map[string]grants, len(p))}
	for role, perms := range p {
		g := grants{exact: make(map[string]struct{}, len(perms))}
		for _, perm := range perms {
			switch {
			case perm == "*":
				g.all = true
			case strings.HasSuffix(perm, "*"):
				g.prefixes = append(g.prefixes, strings.TrimSuffix(perm, "*"))
			default:
				g.exact[perm] = struct{}{}
			}
		}
		c.roles[role] = g
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	g, ok := c.roles[role]
	return ok && g.allows(perm)
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// Allowed checks perm for the caller attached to ctx by the auth middleware.
func (c *Checker) Allowed(ctx context.Context, perm string) bool {
	return c.Has(auth.RoleFromContext(ctx), perm)
}
