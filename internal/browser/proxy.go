package browser

import (
	"fmt"
	"net/url"
)

// Proxy is the proxy server a driver launches with. Credentials carried in
// the endpoint's userinfo are answered by the driver on auth challenges.
type Proxy struct {
	Server   string
	Username string
	Password string
}

func ParseProxy(endpoint string) (Proxy, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return Proxy{}, fmt.Errorf("invalid proxy endpoint: %w", err)
	}
	if u.Host == "" {
		return Proxy{}, fmt.Errorf("invalid proxy endpoint %q: missing host", endpoint)
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}

	p := Proxy{Server: scheme + "://" + u.Host}
	if u.User != nil {
		p.Username = u.User.Username()
		p.Password, _ = u.User.Password()
	}
	return p, nil
}

func (p Proxy) HasCredentials() bool {
	return p.Username != ""
}
