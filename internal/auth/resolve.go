package auth

import (
	"github.com/hecate-project/hecate/internal/herr"
)

// Resolve implements spec.md §4.3 steps 2-5: given the principal
// already resolved for this request, the endpoint's configured scope
// value, the owning uid of the target entity (nil if the endpoint has
// no single owner), and whether the request is a write, decide
// allow/deny.
//
// A nil return means allow. A non-nil return is the *herr.Error to
// report: NOT_FOUND (disabled endpoints hide their existence),
// UNAUTHENTICATED (no credential was supplied and one would change
// the outcome), or FORBIDDEN.
func Resolve(p Principal, scope Value, ownerUID *int64, isWrite bool) error {
	if scope == ScopeDisabled {
		return herr.New(herr.NotFound, "not found")
	}

	if !p.Anonymous && p.Access == AccessDisabled {
		return herr.New(herr.Forbidden, "account is disabled")
	}

	if p.TokenScope == TokenRead && isWrite {
		return herr.New(herr.Forbidden, "token is read-only")
	}

	switch scope {
	case ScopePublic:
		return nil

	case ScopeUser:
		if p.Anonymous {
			return herr.New(herr.Unauthenticated, "authentication required")
		}
		return nil

	case ScopeAdmin:
		if p.Anonymous {
			return herr.New(herr.Unauthenticated, "authentication required")
		}
		if p.Access != AccessAdmin {
			return herr.New(herr.Forbidden, "admin access required")
		}
		return nil

	case ScopeSelf:
		if p.Anonymous {
			return herr.New(herr.Unauthenticated, "authentication required")
		}
		if p.Access == AccessAdmin {
			return nil
		}
		if ownerUID == nil || p.UID != *ownerUID {
			return herr.New(herr.Forbidden, "not the owner of this resource")
		}
		return nil

	default:
		return herr.New(herr.Internal, "unknown scope value %q", scope)
	}
}
