// Package credentials derives synthetic login credentials from member numbers.
// Members log in with their member number, not a real email address; the login
// identity is a synthetic address built from the number.
package credentials

import "strings"

// DefaultDomain is the synthetic email domain appended to the lower-cased
// member number when no domain is configured.
const DefaultDomain = "temp.com"

// Credentials is the login identity/secret pair for one member number.
// Never persisted; recomputed per sign-in attempt.
type Credentials struct {
	LoginIdentity string
	Secret        string
}

// Normalize trims surrounding whitespace and upper-cases a member number.
// All member-number comparisons in the system operate on the normalized form.
func Normalize(memberNumber string) string {
	return strings.ToUpper(strings.TrimSpace(memberNumber))
}

// Deriver builds Credentials from member numbers. Pure and deterministic:
// the same member number always yields the same credentials.
type Deriver struct {
	domain string
}

// NewDeriver returns a Deriver using the given synthetic domain.
// An empty domain falls back to DefaultDomain.
func NewDeriver(domain string) *Deriver {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		domain = DefaultDomain
	}
	return &Deriver{domain: domain}
}

// Derive returns the credentials for memberNumber. The login identity is the
// lower-cased normalized number at the synthetic domain; the secret is the
// normalized number itself. Malformed input is not rejected here; the member
// lookup downstream decides whether the number exists.
func (d *Deriver) Derive(memberNumber string) Credentials {
	n := Normalize(memberNumber)
	return Credentials{
		LoginIdentity: strings.ToLower(n) + "@" + d.domain,
		Secret:        n,
	}
}
