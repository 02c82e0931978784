package guard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/techhatch/jwt"
)

// Well-known locations.
const (
	PathHome               = "/"
	PathLogin              = "/login"
	PathRegister           = "/register"
	PathCandidateDashboard = "/candidate/dashboard"
	PathRecruiterDashboard = "/recruiter/dashboard"
)

// Access classifies a route.
type Access uint8

const (
	// AccessOpen routes are reachable with or without a session.
	AccessOpen Access = iota
	// AccessPublicOnly routes are for visitors; a session redirects to its dashboard.
	AccessPublicOnly
	// AccessProtected routes need a session, and one of Roles when Roles is not empty.
	AccessProtected
)

func (a Access) String() string {
	switch a {
	case AccessOpen:
		return "open"
	case AccessPublicOnly:
		return "public-only"
	case AccessProtected:
		return "protected"
	default:
		return "unknown"
	}
}

// Route is one entry of the route table. Pattern segments starting with ':' match
// any single non-empty segment.
type Route struct {
	Pattern string
	Access  Access
	Roles   []jwt.Role
}

// DefaultRoutes returns the job board routes.
func DefaultRoutes() []Route {
	candidate := []jwt.Role{jwt.RoleCandidate}
	recruiter := []jwt.Role{jwt.RoleRecruiter}
	return []Route{
		{Pattern: PathHome, Access: AccessPublicOnly},
		{Pattern: PathLogin, Access: AccessPublicOnly},
		{Pattern: PathRegister, Access: AccessPublicOnly},
		{Pattern: "/jobs", Access: AccessOpen},
		{Pattern: "/jobs/:id", Access: AccessOpen},

		{Pattern: PathCandidateDashboard, Access: AccessProtected, Roles: candidate},
		{Pattern: "/candidate/profile", Access: AccessProtected, Roles: candidate},
		{Pattern: "/candidate/applications", Access: AccessProtected, Roles: candidate},

		{Pattern: PathRecruiterDashboard, Access: AccessProtected, Roles: recruiter},
		{Pattern: "/recruiter/profile", Access: AccessProtected, Roles: recruiter},
		{Pattern: "/recruiter/post-job", Access: AccessProtected, Roles: recruiter},
		{Pattern: "/recruiter/jobs", Access: AccessProtected, Roles: recruiter},
		{Pattern: "/recruiter/jobs/:id/edit", Access: AccessProtected, Roles: recruiter},
		{Pattern: "/recruiter/jobs/:id/applications", Access: AccessProtected, Roles: recruiter},
	}
}

// Dashboard returns the landing location for role.
func Dashboard(role jwt.Role) string {
	switch role {
	case jwt.RoleCandidate:
		return PathCandidateDashboard
	case jwt.RoleRecruiter:
		return PathRecruiterDashboard
	default:
		return PathHome
	}
}

// ErrDuplicateRoute is returned by NewTable when two routes share a pattern.
var ErrDuplicateRoute = errors.New("duplicate route pattern")

type compiledRoute struct {
	route    Route
	segments []string
}

// Table matches request paths against routes. Static segments win over parameters
// at the same position; otherwise table order decides.
type Table struct {
	routes []compiledRoute
}

// NewTable compiles routes.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make([]compiledRoute, 0, len(routes))}
	seen := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("route pattern %q must start with /", r.Pattern)
		}
		key := normalizePattern(r.Pattern)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, r.Pattern)
		}
		seen[key] = struct{}{}
		t.routes = append(t.routes, compiledRoute{route: r, segments: split(r.Pattern)})
	}
	return t, nil
}

// DefaultTable returns the table of DefaultRoutes.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRoutes()...)
	if err != nil {
		panic(err)
	}
	return t
}

// Match finds the route for path and its parameters.
func (t *Table) Match(path string) (Route, map[string]string, bool) {
	if t == nil {
		return Route{}, nil, false
	}
	segs := split(stripQuery(path))

	best := -1
	bestScore := -1
	var bestParams map[string]string
	for i, cr := range t.routes {
		params, score, ok := matchSegments(cr.segments, segs)
		if !ok || score <= bestScore {
			continue
		}
		best, bestScore, bestParams = i, score, params
	}
	if best < 0 {
		return Route{}, nil, false
	}
	return t.routes[best].route, bestParams, true
}

func matchSegments(pattern, path []string) (map[string]string, int, bool) {
	if len(pattern) != len(path) {
		return nil, 0, false
	}
	var params map[string]string
	score := 0
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if path[i] == "" {
				return nil, 0, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = path[i]
			continue
		}
		if p != path[i] {
			return nil, 0, false
		}
		score++
	}
	return params, score, true
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}

func normalizePattern(p string) string {
	segs := split(p)
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = ":"
		}
	}
	return "/" + strings.Join(segs, "/")
}
