package media

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

func (f *Fetcher) validateDownloadURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("image URL has no host")
	}

	if f.config.AllowPrivateHosts {
		return u, nil
	}

	host := u.Hostname()
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return nil, fmt.Errorf("download host not allowed: %s", host)
	}
	if ip := net.ParseIP(host); ip != nil && isInternalIP(ip) {
		return nil, fmt.Errorf("download host not allowed: %s", host)
	}

	return u, nil
}

func isInternalIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified() ||
		ip.IsMulticast()
}
