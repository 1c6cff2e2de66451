package icloud

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultMaxRedirects is the maximum number of redirect hops allowed.
	DefaultMaxRedirects = 10
	// DefaultTimeout bounds a single round-trip when no timeout is configured.
	DefaultTimeout = 30 * time.Second
)

var (
	ErrTooManyRedirects   = errors.New("redirect loop detected")
	ErrInsecureRedirect   = errors.New("redirect to a non-https endpoint refused")
	ErrInvalidProxyURL    = errors.New("invalid proxy URL")
	ErrUnsupportedScheme  = errors.New("unsupported proxy scheme")
	supportedProxySchemes = map[string]bool{
		"http":   true,
		"https":  true,
		"socks5": true,
	}
)

// TransportOpts configures the HTTP client built by NewHTTPClient.
type TransportOpts struct {
	// Proxy is an http, https or socks5 proxy URL. Empty means the
	// proxy settings of the environment are used.
	Proxy string
	// Timeout bounds every round-trip. Zero selects DefaultTimeout,
	// a negative value disables the timeout.
	Timeout time.Duration
}

// NewHTTPClient builds the transport for a Client. The iCloud session
// cookies travel in plain headers, so the redirect policy drops them on
// any cross-origin hop.
func NewHTTPClient(opts TransportOpts) (*http.Client, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if opts.Proxy != "" {
		parsed, err := url.Parse(opts.Proxy)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, ErrInvalidProxyURL
		}
		if !supportedProxySchemes[parsed.Scheme] {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, parsed.Scheme)
		}
		if parsed.Scheme == "socks5" {
			var auth *proxy.Auth
			if parsed.User != nil {
				pass, _ := parsed.User.Password()
				auth = &proxy.Auth{User: parsed.User.Username(), Password: pass}
			}
			dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
			if err != nil {
				return nil, err
			}
			transport.Proxy = nil
			transport.Dial = dialer.Dial
		} else {
			transport.Proxy = http.ProxyURL(parsed)
		}
	}

	timeout := opts.Timeout
	switch {
	case timeout == 0:
		timeout = DefaultTimeout
	case timeout < 0:
		timeout = 0
	}
	return &http.Client{
		Transport:     transport,
		Timeout:       timeout,
		CheckRedirect: RedirectPolicy(DefaultMaxRedirects),
	}, nil
}

// safeHeaders survive a cross-origin redirect.
var safeHeaders = map[string]bool{
	"User-Agent":      true,
	"Accept":          true,
	"Accept-Language": true,
	"Accept-Encoding": true,
	"Content-Type":    true,
}

// RedirectPolicy returns a CheckRedirect function that caps the number of
// hops, refuses downgrades from https and strips every credential header
// when the redirect leaves the original host.
func RedirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: exceeded %d hops (last URL: %s)",
				ErrTooManyRedirects, maxRedirects, via[len(via)-1].URL)
		}
		if len(via) == 0 {
			return nil
		}
		prev := via[len(via)-1]
		if prev.URL.Scheme == "https" && req.URL.Scheme != "https" {
			return fmt.Errorf("%w: %s", ErrInsecureRedirect, req.URL)
		}
		if prev.URL.Host != req.URL.Host {
			for key := range req.Header {
				if !safeHeaders[http.CanonicalHeaderKey(key)] {
					req.Header.Del(key)
				}
			}
		}
		return nil
	}
}
