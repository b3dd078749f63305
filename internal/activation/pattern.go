package activation

import (
	"net/url"
	"regexp"
	"strings"
)

// MatchURL reports whether rawURL matches a browser-extension style match
// pattern such as "*://gemini.google.com/*". A "*" scheme matches http and
// https, a host may start with "*." to include subdomains, and "*" in the
// path matches any run of characters.
func MatchURL(pattern, rawURL string) bool {
	scheme, rest, ok := strings.Cut(pattern, "://")
	if !ok {
		return false
	}
	host, pathPattern, _ := strings.Cut(rest, "/")
	pathPattern = "/" + pathPattern

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	switch scheme {
	case "*":
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
	default:
		if u.Scheme != scheme {
			return false
		}
	}

	if !matchHost(host, u.Hostname()) {
		return false
	}

	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return globRegexp(pathPattern).MatchString(p)
}

func matchHost(pattern, host string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*."):
		base := pattern[2:]
		return host == base || strings.HasSuffix(host, "."+base)
	default:
		return strings.EqualFold(pattern, host)
	}
}

// globRegexp turns a path glob where "*" matches anything into an anchored
// regexp.
func globRegexp(glob string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(glob)
	return regexp.MustCompile("^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$")
}
