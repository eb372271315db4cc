package urlinfo

import (
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// injectionPatterns are markup/script fragments that have no business in a
// fetchable path. Matching is case-insensitive over the percent-decoded
// path. The list is short on purpose: the validator is not an HTML
// sanitizer, it only refuses to enqueue obviously hostile links.
var injectionPatterns = []string{
	"<script",
	"</script",
	"javascript:",
	"onerror=",
	"onload=",
}

// validate runs the ordered security rule chain against a parsed URL.
// The first failing rule determines the error; later rules are not
// evaluated. This determinism matters: the same input must always produce
// the same error message, because tests and operators key off it.
func validate(u *url.URL, resolved string, policy *Policy) error {
	// 1-2. Size limits. Cheap, and they bound the work every later rule does.
	if len(resolved) > policy.MaxLength {
		return fmt.Errorf("%w (%d > %d)", ErrURLTooLong, len(resolved), policy.MaxLength)
	}
	if len(u.Path) > policy.MaxPathLength {
		return fmt.Errorf("%w (%d > %d)", ErrPathTooLong, len(u.Path), policy.MaxPathLength)
	}

	// 3-6. Scheme rules.
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return ErrMissingScheme
	}
	if len(policy.AllowedSchemes) > 0 && !policy.AllowedSchemes[scheme] {
		return fmt.Errorf("%w: %q", ErrSchemeNotAllowed, scheme)
	}
	if policy.BlockedSchemes[scheme] {
		return fmt.Errorf("%w: %q", ErrBlockedScheme, scheme)
	}
	if scheme == "file" && !policy.AllowFileURLs {
		return ErrFileURLNotAllowed
	}

	// 7. Userinfo.
	if u.User != nil && !policy.AllowAuth {
		return ErrAuthNotAllowed
	}

	// 8. Port range. net/url only guarantees the port is digits, not that
	// it fits; the range check happens here so an oversized port becomes a
	// deterministic error instead of a surprise downstream.
	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 0 || port > policy.MaxPort {
			return fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
		}
	}

	// Authority-based schemes need a host to fetch from.
	host := strings.ToLower(u.Hostname())
	if host == "" && isAuthorityScheme(scheme) {
		return ErrMissingHost
	}

	// 9. Private and loopback hosts.
	if !policy.AllowPrivateIPs && isPrivateHost(host) {
		return fmt.Errorf("%w: %q", ErrPrivateHost, host)
	}

	// 10. Path content. The strict normalizer resolves what it can and
	// reports any attempt to climb above the root; that attempt is
	// rejected outright rather than silently neutralized, so no form of
	// the URL with a live ".." ever reaches the fetch queue.
	if err := validatePath(u); err != nil {
		return err
	}

	return nil
}

// validatePath checks the path for traversal, embedded null bytes, and
// injection fragments, each with its own error.
func validatePath(u *url.URL) error {
	raw := u.EscapedPath()
	decoded := u.Path

	normalized, escaped := normalizePathStrict(decoded)
	if escaped || containsDotDotSegment(normalized) {
		return ErrPathTraversal
	}

	if strings.Contains(decoded, "\x00") || strings.Contains(strings.ToLower(raw), "%00") {
		return ErrNullByte
	}

	lower := strings.ToLower(decoded)
	for _, pattern := range injectionPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("%w: %q", ErrInjectionPattern, pattern)
		}
	}

	return nil
}

// containsDotDotSegment reports whether any "/"-delimited segment equals "..".
func containsDotDotSegment(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// isAuthorityScheme reports whether the scheme requires a network host.
func isAuthorityScheme(scheme string) bool {
	switch scheme {
	case "http", "https", "ftp", "ws", "wss":
		return true
	default:
		return false
	}
}

// isPrivateHost reports whether the host is the literal "localhost" or an
// IP literal inside a loopback, private, or link-local range.
//
// Detection parses the address and checks numeric ranges rather than
// pattern-matching the string form, so every textual spelling of an
// address (leading zeros aside, which net/netip rejects) is classified
// identically. Covered ranges:
//
//	IPv4: 127.0.0.0/8, 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16,
//	      169.254.0.0/16
//	IPv6: ::1, fc00::/7 (unique local), fe80::/10 (link-local),
//	      and IPv4-mapped forms of the above
func isPrivateHost(host string) bool {
	if host == "localhost" {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		// Not an IP literal; hostnames are judged by scope, not here.
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
}
