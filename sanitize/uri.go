package sanitize

import (
	"net"
	"net/url"
	"strings"
)

// dangerousSchemes are rejected outright regardless of the allowlist; they
// can execute code or exfiltrate data when rendered as links.
var dangerousSchemes = []string{
	"javascript:", "data:", "vbscript:", "file:", "ftp:", "mailto:",
}

// allowedSchemes are the only schemes a validated URI may carry.
var allowedSchemes = []string{"http", "https", "urn"}

// ValidateURI trims the input and validates its scheme. It rejects empty
// input, dangerous schemes (javascript:, data:, vbscript:, file:, ftp:,
// mailto:), and any scheme outside {http, https, urn}. On success the
// trimmed string is returned unchanged with ok=true.
func ValidateURI(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	lower := strings.ToLower(s)
	for _, scheme := range dangerousSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	colon := strings.Index(s, ":")
	if colon <= 0 {
		// No scheme at all: not a valid absolute URI.
		return "", false
	}
	scheme := strings.ToLower(s[:colon])
	for _, allowed := range allowedSchemes {
		if scheme == allowed {
			return s, true
		}
	}
	return "", false
}

// IsValidURI reports whether ValidateURI accepts s.
func IsValidURI(s string) bool {
	_, ok := ValidateURI(s)
	return ok
}

// IsValidEndpointURL reports whether s is a parseable absolute http(s) URL
// with a host, i.e. something a SPARQL client could actually POST to.
func IsValidEndpointURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// SecurityLevel classifies the transport security of an endpoint URL.
type SecurityLevel string

const (
	// SecurityHTTPS means traffic to the endpoint is encrypted.
	SecurityHTTPS SecurityLevel = "https"
	// SecurityLocalhost means plain HTTP to a loopback host, exempted from
	// the interception warning.
	SecurityLocalhost SecurityLevel = "http-localhost"
	// SecurityInsecure means plain HTTP to a remote host.
	SecurityInsecure SecurityLevel = "http-remote"
	// SecurityInvalid means the URL could not be parsed as an endpoint URL.
	SecurityInvalid SecurityLevel = "invalid"
)

// SecurityCheck is the result of CheckEndpointSecurity.
type SecurityCheck struct {
	Level   SecurityLevel
	Warning string // empty when there is nothing to warn about
}

// CheckEndpointSecurity classifies an endpoint URL as HTTPS, HTTP to
// localhost (exempted), HTTP to a remote host (warns), or invalid (warns).
func CheckEndpointSecurity(rawURL string) SecurityCheck {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return SecurityCheck{
			Level:   SecurityInvalid,
			Warning: "endpoint URL is not a valid http(s) URL",
		}
	}

	if u.Scheme == "https" {
		return SecurityCheck{Level: SecurityHTTPS}
	}

	if isLocalhost(u.Hostname()) {
		return SecurityCheck{Level: SecurityLocalhost}
	}

	return SecurityCheck{
		Level:   SecurityInsecure,
		Warning: "endpoint uses unencrypted HTTP; queries and credentials could be intercepted",
	}
}

// isLocalhost reports whether host is a loopback name or address.
func isLocalhost(host string) bool {
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// TrustLevel is the three-level trust classification of an endpoint host.
type TrustLevel string

const (
	// TrustTrusted means the host matches the allowlist of known
	// vocabulary providers.
	TrustTrusted TrustLevel = "trusted"
	// TrustUnknown means nothing is known about the host either way.
	TrustUnknown TrustLevel = "unknown"
	// TrustWarning means plain HTTP to a non-localhost host, or an
	// unparseable URL.
	TrustWarning TrustLevel = "warning"
)

// DefaultTrustedHosts returns the built-in allowlist of well-known
// vocabulary providers. Callers with their own policy pass their own list
// to AssessEndpointTrust.
func DefaultTrustedHosts() []string {
	return []string{
		"publications.europa.eu",
		"data.europa.eu",
		"op.europa.eu",
		"id.loc.gov",
		"vocab.getty.edu",
		"www.wikidata.org",
		"query.wikidata.org",
		"lod.gesis.org",
		"agrovoc.fao.org",
		"unesco.org",
	}
}

// AssessEndpointTrust classifies rawURL against an allowlist of trusted
// hosts. Invalid URLs are TrustWarning; plain HTTP to non-localhost hosts
// is TrustWarning; allowlisted hosts are TrustTrusted; everything else is
// TrustUnknown.
func AssessEndpointTrust(rawURL string, trustedHosts []string) TrustLevel {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return TrustWarning
	}

	host := strings.ToLower(u.Hostname())
	for _, trusted := range trustedHosts {
		if host == strings.ToLower(trusted) {
			return TrustTrusted
		}
	}

	if u.Scheme == "http" && !isLocalhost(u.Hostname()) {
		return TrustWarning
	}

	return TrustUnknown
}
