package urlinfo

import "errors"

// Validation errors.
// Each rejection category has its own sentinel so callers and tests can
// distinguish, for example, a traversal attempt from an injected null byte.
// The validator is an ordered chain and stops at the first failure, which
// keeps error messages deterministic for identical inputs.
var (
	// ErrEmptyURL is returned when the input URL is empty or whitespace.
	ErrEmptyURL = errors.New("empty URL")

	// ErrURLTooLong is returned when the whole URL exceeds Policy.MaxLength.
	ErrURLTooLong = errors.New("URL exceeds maximum length")

	// ErrPathTooLong is returned when the path exceeds Policy.MaxPathLength.
	ErrPathTooLong = errors.New("URL path exceeds maximum length")

	// ErrParse is returned when the URL cannot be split into its
	// components at all. The underlying parser error is wrapped.
	ErrParse = errors.New("malformed URL")

	// ErrMissingScheme is returned when the URL has no scheme, which means
	// it was a relative reference that could not be resolved.
	ErrMissingScheme = errors.New("missing URL scheme")

	// ErrSchemeNotAllowed is returned when Policy.AllowedSchemes is
	// non-empty and does not contain the scheme.
	ErrSchemeNotAllowed = errors.New("scheme not in allowed list")

	// ErrBlockedScheme is returned for schemes in Policy.BlockedSchemes,
	// such as javascript: and data:.
	ErrBlockedScheme = errors.New("blocked scheme")

	// ErrFileURLNotAllowed is returned for file: URLs when the policy
	// does not permit them.
	ErrFileURLNotAllowed = errors.New("file URLs not allowed")

	// ErrAuthNotAllowed is returned when the authority carries userinfo
	// (user:pass@) and the policy does not permit it.
	ErrAuthNotAllowed = errors.New("authentication info not allowed in URL")

	// ErrMissingHost is returned when an authority-based scheme has no host.
	ErrMissingHost = errors.New("missing host")

	// ErrInvalidPort is returned when the port is not an integer in
	// [0, Policy.MaxPort]. A port that fails to parse maps here too; it
	// must never surface as an uncaught failure.
	ErrInvalidPort = errors.New("invalid port")

	// ErrPrivateHost is returned for loopback and private-range hosts when
	// the policy does not permit them.
	ErrPrivateHost = errors.New("private or loopback host not allowed")

	// ErrPathTraversal is returned when the path attempts to climb above
	// the root via .. segments.
	ErrPathTraversal = errors.New("directory traversal in path")

	// ErrNullByte is returned when the path embeds a null byte, raw or
	// percent-encoded.
	ErrNullByte = errors.New("null byte in path")

	// ErrInjectionPattern is returned when the path embeds markup or
	// script fragments such as <script>.
	ErrInjectionPattern = errors.New("injection pattern in path")
)
