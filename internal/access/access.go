// Package access decides whether a protected surface may be served.
//
// The gate is a pure function over the session and role state handed to it.
// It performs no I/O and never mutates either input, so callers can evaluate
// it as often as they like, including inside request middleware.
package access

import "membership-backoffice/internal/roles/domain"

// Capability names a protected surface of the application.
type Capability string

const (
	CapabilityDashboard  Capability = "dashboard"
	CapabilityUsers      Capability = "users"
	CapabilityFinancials Capability = "financials"
	CapabilitySystem     Capability = "system"
)

// Decision is the gate's verdict for a request.
type Decision string

const (
	// DecisionRedirect sends the caller to the login flow.
	DecisionRedirect Decision = "redirect"
	// DecisionWait means the session exists but roles are still resolving.
	// Nothing protected is served and no redirect happens.
	DecisionWait  Decision = "wait"
	DecisionAllow Decision = "allow"
	// DecisionDeny withholds the surface; callers fall back to the dashboard.
	DecisionDeny Decision = "deny"
)

// Evaluate gates a capability against the current session and role state.
// An absent session always redirects. A present session with unresolved
// roles always waits. Only a resolved role set can allow or deny.
func Evaluate(hasSession, rolesLoaded bool, perms domain.PermissionSet, capability Capability) Decision {
	if !hasSession {
		return DecisionRedirect
	}
	if !rolesLoaded {
		return DecisionWait
	}
	if Granted(perms, capability) {
		return DecisionAllow
	}
	return DecisionDeny
}

// Granted reports whether perms covers the capability. Unknown capabilities
// are never granted.
func Granted(perms domain.PermissionSet, capability Capability) bool {
	switch capability {
	case CapabilityDashboard:
		return true
	case CapabilityUsers:
		return perms.CanManageUsers || perms.CanCollectPayments
	case CapabilityFinancials:
		return perms.CanManageUsers || perms.CanCollectPayments
	case CapabilitySystem:
		return perms.CanAccessSystem
	default:
		return false
	}
}
