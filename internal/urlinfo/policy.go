package urlinfo

import (
	"errors"
	"fmt"
)

// Default policy values.
// These defaults are tuned for documentation crawling: permissive enough to
// follow real-world doc sites, strict enough to keep the fetch queue safe.
const (
	// DefaultMaxLength is the maximum accepted length of a whole URL.
	// 2048 matches the practical limit enforced by common browsers and
	// intermediaries; anything longer is almost certainly not a page link.
	DefaultMaxLength = 2048

	// DefaultMaxPathLength is the maximum accepted length of the path
	// component alone. Deep but legitimate doc trees stay well under this.
	DefaultMaxPathLength = 1024

	// DefaultMaxPort is the highest accepted port number.
	DefaultMaxPort = 65535
)

// Policy configuration errors, returned by Policy.Validate.
var (
	// ErrPolicyMaxLength is returned when MaxLength is zero or negative.
	ErrPolicyMaxLength = errors.New("policy: max length must be positive")

	// ErrPolicyMaxPathLength is returned when MaxPathLength is zero or negative.
	ErrPolicyMaxPathLength = errors.New("policy: max path length must be positive")

	// ErrPolicyMaxPort is returned when MaxPort is outside [1, 65535].
	ErrPolicyMaxPort = errors.New("policy: max port must be in range 1-65535")

	// ErrPolicySchemeConflict is returned when a scheme appears in both the
	// allowed and blocked sets. Such a policy is ambiguous and indicates a
	// configuration mistake rather than an intent we could guess.
	ErrPolicySchemeConflict = errors.New("policy: scheme is both allowed and blocked")
)

// Policy controls which schemes, hosts, and URL shapes the validator
// accepts. A Policy is constructed once, validated at startup, and never
// mutated afterward; every URLInfo references it read-only, which is what
// makes concurrent construction safe without locking.
type Policy struct {
	// AllowAuth permits userinfo (user:pass@) in the authority.
	// Credentials in crawled links are almost always either a mistake or an
	// attack, so this defaults to false.
	AllowAuth bool

	// AllowFragments keeps the #fragment in the canonical form.
	// Fragments never reach the server, so for fetch deduplication they are
	// dropped by default.
	AllowFragments bool

	// AllowFileURLs permits the file: scheme. Local filesystem access from
	// a web crawler is a sandbox escape, so this defaults to false.
	AllowFileURLs bool

	// AllowQueryString keeps the query string in the canonical form.
	// Many doc sites key content on query parameters, so this defaults to true.
	AllowQueryString bool

	// AllowPrivateIPs permits loopback and RFC 1918 / IPv6 private hosts.
	// Defaults to false to prevent server-side request forgery against
	// internal infrastructure.
	AllowPrivateIPs bool

	// MaxLength is the maximum length of the whole URL string.
	MaxLength int

	// MaxPathLength is the maximum length of the path component.
	MaxPathLength int

	// MaxPort is the highest accepted port number.
	MaxPort int

	// BlockedSchemes are rejected outright. Matching is case-insensitive
	// against the lowercased scheme.
	BlockedSchemes map[string]bool

	// AllowedSchemes, when non-empty, restricts accepted schemes to its
	// members. An empty set means no restriction beyond BlockedSchemes.
	AllowedSchemes map[string]bool
}

// DefaultPolicy returns the policy used when the caller does not supply one.
// The returned value is freshly allocated; callers may adjust fields before
// first use, but must treat the policy as frozen once URLInfo construction
// begins.
func DefaultPolicy() *Policy {
	return &Policy{
		AllowAuth:        false,
		AllowFragments:   false,
		AllowFileURLs:    false,
		AllowQueryString: true,
		AllowPrivateIPs:  false,
		MaxLength:        DefaultMaxLength,
		MaxPathLength:    DefaultMaxPathLength,
		MaxPort:          DefaultMaxPort,
		BlockedSchemes: map[string]bool{
			"javascript": true,
			"data":       true,
			"vbscript":   true,
			"mailto":     true,
		},
		AllowedSchemes: map[string]bool{},
	}
}

// Validate reports whether the policy is internally consistent.
// Misconfiguration fails fast here, at startup, so the per-URL hot path can
// assume a well-formed policy and never needs to re-check it.
func (p *Policy) Validate() error {
	if p.MaxLength <= 0 {
		return ErrPolicyMaxLength
	}
	if p.MaxPathLength <= 0 {
		return ErrPolicyMaxPathLength
	}
	if p.MaxPort <= 0 || p.MaxPort > 65535 {
		return ErrPolicyMaxPort
	}
	for scheme := range p.AllowedSchemes {
		if p.BlockedSchemes[scheme] {
			return fmt.Errorf("%w: %q", ErrPolicySchemeConflict, scheme)
		}
	}
	return nil
}
