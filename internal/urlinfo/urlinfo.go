package urlinfo

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// URLType classifies a link relative to a crawl's seed domain.
type URLType int

const (
	// URLTypeUnknown means the link is invalid or no seed was given.
	URLTypeUnknown URLType = iota
	// URLTypeInternal means the link shares the seed's registered domain.
	URLTypeInternal
	// URLTypeExternal means the link points at a different registered domain.
	URLTypeExternal
)

// String returns the string representation of the URLType.
func (t URLType) String() string {
	switch t {
	case URLTypeInternal:
		return "internal"
	case URLTypeExternal:
		return "external"
	default:
		return "unknown"
	}
}

// URLInfo is an immutable value object describing one discovered link.
// Every field is computed in New and frozen; instances never share mutable
// state, so crawl workers construct and read them concurrently without
// locks.
//
// Design decision: New never returns an error. Link extraction feeds this
// constructor arbitrary strings scraped from arbitrary HTML; an invalid
// link is an expected, per-item outcome reported via IsValid and
// ErrorMessage, not an exceptional condition that should interrupt the
// caller's loop.
type URLInfo struct {
	raw        string
	base       string
	valid      bool
	errMessage string

	// normalized always holds something printable: the canonical form when
	// valid, otherwise a best-effort fallback for diagnostics.
	normalized string

	scheme   string
	host     string
	port     int // 0 when absent
	path     string
	query    string
	fragment string
	username string
	password string

	domain domainParts

	// compareKey is the comparison-normalized form used for Equal and
	// Hash: lowercased scheme and host, default ports stripped, fragment
	// always ignored. It can differ from normalized, so two instances may
	// compare equal even when their stored strings differ in fragment.
	compareKey string
}

// Option configures URLInfo construction.
type Option func(*settings)

type settings struct {
	base   string
	policy *Policy
	logger *slog.Logger
}

// WithBase sets the base URL against which a relative link is resolved.
// The crawler passes the URL of the page the link was found on.
func WithBase(base string) Option {
	return func(s *settings) {
		s.base = base
	}
}

// WithPolicy sets the validation policy. The policy must have passed
// Validate and must not be mutated afterward. Defaults to DefaultPolicy.
func WithPolicy(policy *Policy) Option {
	return func(s *settings) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithLogger sets the logger used for canonicalization fallback warnings.
// Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a URLInfo from a raw link string.
//
// The pipeline runs resolve -> parse -> validate -> canonicalize ->
// decompose, in that order, exactly once. Any failure short-circuits into
// an invalid instance carrying the first error encountered; a best-effort
// normalized string is still recorded for logging. New itself never fails
// and never panics.
func New(raw string, opts ...Option) *URLInfo {
	s := settings{policy: DefaultPolicy(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	info := &URLInfo{raw: raw, base: s.base, normalized: raw}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return info.fail(ErrEmptyURL.Error())
	}

	resolved, err := resolve(trimmed, s.base)
	if err != nil {
		info.normalized = trimmed
		return info.fail(fmt.Sprintf("%v: %v", ErrParse, err))
	}
	info.normalized = resolved

	u, err := url.Parse(resolved)
	if err != nil {
		// net/url reports out-of-alphabet ports as parse errors; the
		// contract promises a named invalid-port error for those.
		if strings.Contains(err.Error(), "invalid port") {
			return info.fail(ErrInvalidPort.Error())
		}
		return info.fail(fmt.Sprintf("%v: %v", ErrParse, err))
	}

	info.populate(u)

	if err := validate(u, resolved, s.policy); err != nil {
		info.normalized = fallbackNormalized(u, resolved)
		info.compareKey = info.normalized
		return info.fail(err.Error())
	}

	trailingSlash := strings.HasSuffix(u.Path, "/")
	info.normalized = safeCanonicalize(u, s.policy, trailingSlash, resolved, s.logger)
	info.host = canonicalHost(u.Hostname())
	info.domain = decomposeHost(info.host)
	info.compareKey = comparisonForm(u)
	info.valid = true
	return info
}

// resolve turns a possibly-relative link plus an optional base into an
// absolute URL string. With no base the raw string is returned unchanged;
// if it was not absolute, the downstream missing-scheme rule reports it.
func resolve(raw, base string) (string, error) {
	if base == "" {
		return raw, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("base URL: %w", err)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}

// populate copies the structural fields out of the parsed URL.
func (i *URLInfo) populate(u *url.URL) {
	i.scheme = strings.ToLower(u.Scheme)
	i.host = strings.ToLower(u.Hostname())
	i.path = u.Path
	i.query = u.RawQuery
	i.fragment = u.Fragment
	if u.User != nil {
		i.username = u.User.Username()
		i.password, _ = u.User.Password()
	}
	if p, err := strconv.Atoi(u.Port()); err == nil {
		i.port = p
	}
}

// fail marks the instance invalid with the given message and returns it.
func (i *URLInfo) fail(msg string) *URLInfo {
	i.valid = false
	i.errMessage = msg
	if i.compareKey == "" {
		i.compareKey = i.normalized
	}
	return i
}

// comparisonForm builds the string Equal and Hash operate on: lowercased
// scheme and host, default port stripped, fragment dropped, query kept.
func comparisonForm(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := canonicalHost(u.Hostname())
	port := u.Port()
	if port != "" && port == defaultPorts[scheme] {
		port = ""
	}
	key := scheme + "://" + host
	if port != "" {
		key += ":" + port
	}
	path := normalizePathCanonical(u.Path)
	if path == "" && host != "" {
		path = "/"
	}
	key += path
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}

// IsValid reports whether the URL passed every validation rule.
func (i *URLInfo) IsValid() bool { return i.valid }

// ErrorMessage returns the first validation failure, or "" when valid.
func (i *URLInfo) ErrorMessage() string { return i.errMessage }

// Raw returns the original input string, never mutated.
func (i *URLInfo) Raw() string { return i.raw }

// Base returns the base URL used during resolution, if any.
func (i *URLInfo) Base() string { return i.base }

// Normalized returns the canonical form for valid URLs, or a best-effort
// fallback string for invalid ones. It is never empty for non-empty input.
func (i *URLInfo) Normalized() string { return i.normalized }

// Scheme returns the lowercased scheme.
func (i *URLInfo) Scheme() string { return i.scheme }

// Host returns the lowercased host without port or brackets.
func (i *URLInfo) Host() string { return i.host }

// Port returns the explicit port, or 0 when none was written.
func (i *URLInfo) Port() int { return i.port }

// Path returns the decoded path as parsed.
func (i *URLInfo) Path() string { return i.path }

// Query returns the raw query string without the leading "?".
func (i *URLInfo) Query() string { return i.query }

// Fragment returns the decoded fragment without the leading "#".
func (i *URLInfo) Fragment() string { return i.fragment }

// Username returns the userinfo user name, if present.
func (i *URLInfo) Username() string { return i.username }

// Password returns the userinfo password, if present.
func (i *URLInfo) Password() string { return i.password }

// RegisteredDomain returns the domain plus public suffix
// ("example.co.uk"), or the host itself for IP literals and "localhost".
// Never empty for a valid URL.
func (i *URLInfo) RegisteredDomain() string { return i.domain.registered }

// Domain returns the label immediately before the public suffix.
func (i *URLInfo) Domain() string { return i.domain.domain }

// Subdomain returns everything before the domain label, or "".
func (i *URLInfo) Subdomain() string { return i.domain.subdomain }

// Suffix returns the longest matching public suffix, or "" for IP
// literals and "localhost".
func (i *URLInfo) Suffix() string { return i.domain.suffix }

// Equal reports whether two URLInfo values identify the same resource
// under comparison normalization: case-insensitive scheme and host,
// default ports stripped, fragments ignored.
func (i *URLInfo) Equal(other *URLInfo) bool {
	if other == nil {
		return false
	}
	return i.compareKey == other.compareKey
}

// Hash returns a 64-bit FNV-1a hash of the comparison form, suitable as a
// frontier dedup key. Equal instances hash identically.
func (i *URLInfo) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(i.compareKey)) //nolint:errcheck // fnv never fails
	return h.Sum64()
}

// Classify reports whether the link is internal or external to the given
// seed registered domain. Invalid links and empty seeds are unknown.
func (i *URLInfo) Classify(seedRegisteredDomain string) URLType {
	if !i.valid || seedRegisteredDomain == "" {
		return URLTypeUnknown
	}
	if strings.EqualFold(i.domain.registered, seedRegisteredDomain) {
		return URLTypeInternal
	}
	return URLTypeExternal
}

// String returns the normalized form, making URLInfo printable in logs.
func (i *URLInfo) String() string { return i.normalized }
