package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ServiceURLValidator checks the base URL of the post service before any
// request is built from it.
type ServiceURLValidator struct {
	// AllowLocal permits loopback hosts and private network addresses
	AllowLocal bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewServiceURLValidator creates a validator that only accepts public hosts
func NewServiceURLValidator() *ServiceURLValidator {
	return &ServiceURLValidator{
		AllowLocal: false,
		MaxLength:  2048,
	}
}

// NewPermissiveServiceURLValidator creates a validator for a service running
// on the local machine or network
func NewPermissiveServiceURLValidator() *ServiceURLValidator {
	return &ServiceURLValidator{
		AllowLocal: true,
		MaxLength:  2048,
	}
}

// ValidateAndNormalize validates a base URL and returns it without a
// trailing slash. A missing scheme defaults to https.
func (v *ServiceURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("credentials are not permitted in the service URL")
	}

	if err := v.validateHost(parsed.Hostname()); err != nil {
		return "", err
	}

	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("service URL must not carry a query or fragment")
	}

	return scheme + "://" + strings.ToLower(parsed.Host) + strings.TrimRight(parsed.EscapedPath(), "/"), nil
}

func (v *ServiceURLValidator) validateHost(hostname string) error {
	if v.AllowLocal {
		return nil
	}
	if isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() {
			return fmt.Errorf("unspecified addresses are not permitted")
		}
		if isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	return nil
}

// isLocalhost checks if a hostname refers to localhost
func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}

// isPrivateIP reports loopback, link-local and private-range addresses
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
