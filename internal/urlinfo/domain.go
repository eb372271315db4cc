package urlinfo

import (
	"net/netip"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// domainParts is the decomposition of a host into its registrable pieces.
// For "blog.example.co.uk": subdomain "blog", domain "example", suffix
// "co.uk", registered "example.co.uk".
type domainParts struct {
	subdomain  string
	domain     string
	suffix     string
	registered string
}

// decomposeHost splits an already-lowercased host using the public suffix
// list. IP literals and the literal "localhost" are not names, so no
// suffix lookup applies: they decompose to domain = registered = host with
// empty subdomain and suffix. The registered domain is therefore never
// empty for a valid URL, which the crawler's scope filter relies on.
//
// The public suffix dataset ships compiled into the publicsuffix package;
// it is loaded once at process start and only ever read, so concurrent
// decomposition needs no locking.
func decomposeHost(host string) domainParts {
	if host == "" {
		return domainParts{}
	}
	if isIPLiteral(host) || host == "localhost" {
		return domainParts{domain: host, registered: host}
	}

	host = strings.TrimSuffix(host, ".")

	suffix, _ := publicsuffix.PublicSuffix(host)
	if suffix == "" || suffix == host {
		// The whole host is a public suffix (or the list knows nothing
		// useful). There is no registrable label; fall back to the host
		// itself so the registered domain stays populated.
		return domainParts{domain: host, registered: host}
	}

	rest := strings.TrimSuffix(host, "."+suffix)
	domain := rest
	subdomain := ""
	if i := strings.LastIndex(rest, "."); i >= 0 {
		subdomain = rest[:i]
		domain = rest[i+1:]
	}

	return domainParts{
		subdomain:  subdomain,
		domain:     domain,
		suffix:     suffix,
		registered: domain + "." + suffix,
	}
}

// isIPLiteral reports whether the host parses as an IPv4 or IPv6 address.
// Brackets around IPv6 literals are assumed to be already stripped.
func isIPLiteral(host string) bool {
	_, err := netip.ParseAddr(host)
	return err == nil
}
