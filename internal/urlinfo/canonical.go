package urlinfo

import (
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// defaultPorts maps schemes to the port implied when none is written.
// A canonical URL never carries its scheme's default port.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ftp":   "21",
	"ws":    "80",
	"wss":   "443",
}

// canonicalize assembles the final normalized string for a validated URL.
// trailingSlash records whether the original input path ended in "/"; the
// canonical form keeps that slash so that textually stable links stay
// textually stable after normalization.
//
// Canonicalization is best-effort by contract: if anything in here panics
// on a pathological input, the caller recovers, logs, and falls back to
// the resolved string without flipping validity. A canonicalization bug
// must degrade a log line, not kill a crawl.
func canonicalize(u *url.URL, policy *Policy, trailingSlash bool) string {
	scheme := strings.ToLower(u.Scheme)
	host := canonicalHost(u.Hostname())

	port := u.Port()
	if port != "" && port == defaultPorts[scheme] {
		port = ""
	}

	path := normalizePathCanonical(u.Path)
	if trailingSlash && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	if path == "" && host != "" {
		path = "/"
	}

	var b strings.Builder
	b.Grow(len(u.String()))
	b.WriteString(scheme)
	b.WriteString("://")
	if u.User != nil {
		// Userinfo case is preserved: credentials are case-sensitive.
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	if strings.Contains(host, ":") {
		// IPv6 literal.
		b.WriteString("[" + host + "]")
	} else {
		b.WriteString(host)
	}
	if port != "" {
		b.WriteString(":" + port)
	}
	b.WriteString(escapePath(path))
	if policy.AllowQueryString && u.RawQuery != "" {
		b.WriteString("?" + u.RawQuery)
	}
	if policy.AllowFragments && u.Fragment != "" {
		b.WriteString("#" + u.EscapedFragment())
	}
	return b.String()
}

// canonicalHost lowercases the host and folds internationalized names to
// their ASCII (punycode) form. The text is NFC-normalized first so that
// canonically equivalent Unicode spellings of the same name compare equal
// after folding. Hosts the IDNA profile rejects (underscores, stray
// percent escapes) fall back to plain lowercasing: canonicalization must
// not invalidate what the validator accepted.
func canonicalHost(host string) string {
	host = strings.ToLower(host)
	if host == "" {
		return host
	}
	ascii, err := idna.Lookup.ToASCII(norm.NFC.String(host))
	if err != nil {
		return host
	}
	return ascii
}

// escapePath percent-encodes the characters that cannot appear raw in a
// path while leaving already-safe characters untouched, using the same
// encoding net/url applies when printing a URL.
func escapePath(path string) string {
	tmp := url.URL{Path: path}
	return tmp.EscapedPath()
}

// fallbackNormalized produces the best-effort normalized string recorded
// on URLInfo when validation fails. It exists for logs and diagnostics
// only; invalid URLs never reach the fetch queue.
func fallbackNormalized(u *url.URL, resolved string) string {
	if u == nil {
		return resolved
	}
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.Fragment = ""
	if s := c.String(); s != "" {
		return s
	}
	return resolved
}

// safeCanonicalize wraps canonicalize with panic recovery, honoring the
// contract that a canonicalization-only failure degrades to the resolved
// string instead of propagating.
func safeCanonicalize(u *url.URL, policy *Policy, trailingSlash bool, resolved string, logger *slog.Logger) (result string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("canonicalization failed, using resolved URL",
				"url", resolved,
				"panic", r,
			)
			result = resolved
		}
	}()
	return canonicalize(u, policy, trailingSlash)
}
