package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrInvalidEndpoint is wrapped by every endpoint validation failure.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// EndpointValidator checks the base URL of the recipe API and the image
// links found in recipe records.
type EndpointValidator struct {
	// AllowLocalhost permits loopback hosts, used against local test servers.
	AllowLocalhost bool
	// AllowPrivateIPs permits RFC 1918 and link-local addresses.
	AllowPrivateIPs bool
	MaxLength       int
}

// NewEndpointValidator creates a validator with secure defaults
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{MaxLength: 2048}
}

// NewPermissiveEndpointValidator creates a validator that allows local development
func NewPermissiveEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEndpoint, fmt.Sprintf(format, args...))
}

// ValidateAndNormalize validates a URL and returns its normalized form. A
// missing scheme defaults to https and a trailing slash is dropped so paths
// can be appended.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", invalid("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", invalid("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", invalid("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", invalid("malformed URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", invalid("URL must use http or https protocol")
	}
	if u.Host == "" || u.Hostname() == "" {
		return "", invalid("URL must have a valid hostname")
	}
	if u.User != nil {
		return "", invalid("credentials in URL are not permitted")
	}
	if err := v.checkHost(u.Hostname()); err != nil {
		return "", err
	}
	if strings.Contains(u.Path, "..") {
		return "", invalid("directory traversal patterns not allowed in URL path")
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

func (v *EndpointValidator) checkHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return invalid("localhost URLs are not permitted")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() || ip.Equal(net.IPv4bcast) {
			return invalid("address %s is not routable", hostname)
		}
		if !v.AllowPrivateIPs && !ip.IsLoopback() && isPrivateIP(ip) {
			return invalid("private IP addresses are not permitted")
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
