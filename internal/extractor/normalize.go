package extractor

import (
	"net/netip"
	"net/url"
	"strings"
)

// CleanToken removes decorative markup characters and surrounding whitespace.
// The brackets of an IPv6 host literal are kept.
func CleanToken(s string) string {
	if open := strings.Index(s, "://["); open >= 0 {
		open += len("://")
		if n := strings.IndexByte(s[open+1:], ']'); n >= 0 {
			end := open + 1 + n
			if addr, err := netip.ParseAddr(s[open+1 : end]); err == nil && addr.Is6() {
				return strings.TrimSpace(decorationReplacer.Replace(s[:open]) + s[open:end+1] + decorationReplacer.Replace(s[end+1:]))
			}
		}
	}

	return strings.TrimSpace(decorationReplacer.Replace(s))
}

// Normalize turns a raw token into a Link. It never fails: tokens without an
// http(s) scheme or a host yield the zero Link and false, which downstream
// stages treat as "not a link".
func Normalize(token string) (Link, bool) {
	cleaned := truncateAtInvalid(CleanToken(token))
	cleaned = trailingPunct.ReplaceAllString(cleaned, "")

	if cleaned == "" {
		return Link{}, false
	}

	parsed, err := url.Parse(cleaned)
	if err != nil {
		return Link{}, false
	}

	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Hostname() == "" {
		return Link{}, false
	}

	return Link{
		Scheme: scheme,
		Host:   normalizeHost(parsed, scheme),
		Path:   strings.TrimRight(parsed.EscapedPath(), "/"),
		Query:  cleanQuery(parsed.RawQuery),
	}, true
}

// truncateAtInvalid cuts s at the first character that cannot appear in a URL,
// so adjoining text is not absorbed into the link.
func truncateAtInvalid(s string) string {
	for i, r := range s {
		if !isURLChar(r) {
			return s[:i]
		}
	}

	return s
}

// normalizeHost lowercases the hostname and removes the scheme's default port.
// IPv6 literals keep their brackets.
func normalizeHost(u *url.URL, scheme string) string {
	hostname := strings.ToLower(u.Hostname())
	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}

	port := u.Port()

	if port == "" || defaultPorts[scheme] == port {
		return hostname
	}

	return hostname + ":" + port
}

// cleanQuery drops tracking parameters and empty pairs, keeping the remaining
// pairs exactly as written.
func cleanQuery(raw string) string {
	if raw == "" {
		return ""
	}

	kept := make([]string, 0, strings.Count(raw, "&")+1)

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}

		key, _, _ := strings.Cut(pair, "=")
		if _, isTracking := trackingParams[strings.ToLower(key)]; isTracking {
			continue
		}

		kept = append(kept, pair)
	}

	return strings.Join(kept, "&")
}
