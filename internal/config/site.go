package config

import "github.com/VespianRex/lib2docscrape/internal/urlinfo"

// SiteConfig holds site-specific configuration for a single documentation
// host. This allows customizing crawl behavior per site.
type SiteConfig struct {
	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page limit for this site.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// PolicySpec is the YAML shape of the URL validation policy.
// Boolean fields are pointers so that an absent key keeps the engine
// default instead of forcing false.
type PolicySpec struct {
	AllowAuth        *bool    `yaml:"allowAuth,omitempty"`
	AllowFragments   *bool    `yaml:"allowFragments,omitempty"`
	AllowFileURLs    *bool    `yaml:"allowFileUrls,omitempty"`
	AllowQueryString *bool    `yaml:"allowQueryString,omitempty"`
	AllowPrivateIPs  *bool    `yaml:"allowPrivateIps,omitempty"`
	MaxLength        int      `yaml:"maxLength,omitempty"`
	MaxPathLength    int      `yaml:"maxPathLength,omitempty"`
	MaxPort          int      `yaml:"maxPort,omitempty"`
	BlockedSchemes   []string `yaml:"blockedSchemes,omitempty"`
	AllowedSchemes   []string `yaml:"allowedSchemes,omitempty"`
}

// File represents the structure of the .docscrape configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are hostnames without the scheme (e.g., "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Policy overrides fields of the default URL validation policy.
	Policy *PolicySpec `yaml:"policy,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname,
// merging the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
		if len(siteConfig.FollowPatterns) > 0 {
			result.FollowPatterns = siteConfig.FollowPatterns
		}
	}

	return result
}

// BuildPolicy materializes a urlinfo.Policy from the defaults plus any
// overrides in the spec. The result is validated by the caller before the
// crawl starts, so a contradictory file fails fast rather than mid-crawl.
func (s *PolicySpec) BuildPolicy() *urlinfo.Policy {
	p := urlinfo.DefaultPolicy()
	if s == nil {
		return p
	}

	if s.AllowAuth != nil {
		p.AllowAuth = *s.AllowAuth
	}
	if s.AllowFragments != nil {
		p.AllowFragments = *s.AllowFragments
	}
	if s.AllowFileURLs != nil {
		p.AllowFileURLs = *s.AllowFileURLs
	}
	if s.AllowQueryString != nil {
		p.AllowQueryString = *s.AllowQueryString
	}
	if s.AllowPrivateIPs != nil {
		p.AllowPrivateIPs = *s.AllowPrivateIPs
	}
	if s.MaxLength > 0 {
		p.MaxLength = s.MaxLength
	}
	if s.MaxPathLength > 0 {
		p.MaxPathLength = s.MaxPathLength
	}
	if s.MaxPort > 0 {
		p.MaxPort = s.MaxPort
	}
	if len(s.BlockedSchemes) > 0 {
		p.BlockedSchemes = make(map[string]bool, len(s.BlockedSchemes))
		for _, scheme := range s.BlockedSchemes {
			p.BlockedSchemes[scheme] = true
		}
	}
	if len(s.AllowedSchemes) > 0 {
		p.AllowedSchemes = make(map[string]bool, len(s.AllowedSchemes))
		for _, scheme := range s.AllowedSchemes {
			p.AllowedSchemes[scheme] = true
		}
	}
	return p
}
