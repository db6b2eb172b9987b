// Package policy decides route admission for the two HTTP surfaces. Each
// surface is an ordered, first-match list of (subject, path pattern, effect)
// rules evaluated by casbin; path patterns use Ant-style globs where "**"
// spans any number of segments.
package policy

import (
	_ "embed"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

//go:embed model.conf
var modelContent string

//go:embed groups.csv
var groupPolicy string

//go:embed api_policy.csv
var apiPolicy string

//go:embed web_policy.csv
var webPolicy string

// SubjectAnonymous is the casbin subject of a request without an identity.
const SubjectAnonymous = "anonymous"

// Surface names a set of routes sharing one admission policy.
type Surface string

const (
	SurfaceAPI Surface = "api"
	SurfaceWeb Surface = "web"
)

// Decision is the outcome of an admission check.
type Decision int

const (
	Allow Decision = iota
	// Unauthenticated means the route needs an identity the request lacks.
	Unauthenticated
	// Forbidden means the request's role is not admitted on the route.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Enforcer evaluates one surface's policy. It is safe for concurrent use.
type Enforcer struct {
	surface  Surface
	enforcer *casbin.SyncedEnforcer
}

// NewAPIEnforcer loads the embedded REST policy.
func NewAPIEnforcer() (*Enforcer, error) {
	return New(SurfaceAPI, apiPolicy)
}

// NewWebEnforcer loads the embedded browser policy.
func NewWebEnforcer() (*Enforcer, error) {
	return New(SurfaceWeb, webPolicy)
}

// New builds an enforcer for surface from CSV rules. The role grouping is
// always included.
func New(surface Surface, rules string) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	adapter := stringadapter.NewAdapter(groupPolicy + "\n" + rules)
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	enforcer.AddFunction("antMatch", AntMatchFunction())

	return &Enforcer{surface: surface, enforcer: enforcer}, nil
}

func (e *Enforcer) Surface() Surface {
	return e.surface
}

// Decide admits or rejects a request for urlPath. A nil identity is
// anonymous; a denial for an anonymous request is Unauthenticated, for an
// authenticated one Forbidden.
func (e *Enforcer) Decide(id *domain.Identity, urlPath string) (Decision, error) {
	sub := SubjectAnonymous
	if id != nil {
		sub = string(id.Role)
	}

	ok, err := e.enforcer.Enforce(sub, CleanPath(urlPath))
	if err != nil {
		return Forbidden, fmt.Errorf("enforce %s policy: %w", e.surface, err)
	}
	switch {
	case ok:
		return Allow, nil
	case id == nil:
		return Unauthenticated, nil
	default:
		return Forbidden, nil
	}
}

// AntMatchFunction returns the antMatch function for the casbin matcher.
func AntMatchFunction() func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("antMatch requires 2 arguments: path, pattern")
		}
		name, ok := args[0].(string)
		if !ok {
			return false, fmt.Errorf("antMatch: first argument must be string (path)")
		}
		pattern, ok := args[1].(string)
		if !ok {
			return false, fmt.Errorf("antMatch: second argument must be string (pattern)")
		}
		return AntMatch(pattern, name), nil
	}
}

// AntMatch reports whether urlPath matches pattern. A trailing "/**" also
// matches the bare prefix, so "/api/auth/**" admits "/api/auth".
func AntMatch(pattern, urlPath string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok && urlPath == prefix {
		return true
	}
	matched, err := doublestar.Match(pattern, urlPath)
	return err == nil && matched
}

// CleanPath returns the rooted, dot-segment-free form of p that rules are
// matched against.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
