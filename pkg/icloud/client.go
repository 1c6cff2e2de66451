package icloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hmectl/hmectl/pkg/logger"
	"golang.org/x/net/http/httpguts"
)

// DEF_SETUP_URL is the base of the iCloud setup web service.
const DEF_SETUP_URL = "https://setup.icloud.com/setup/ws/1"

// Client holds the cookies of an iCloud web session and the directory of
// web services discovered for it.
//
// A Client is not safe for concurrent use: Validate mutates the cookie
// set and the directory without synchronization.
type Client struct {
	hc       *http.Client
	l        logger.Logger
	setupURL string
	ua       string
	headers  Headers
	cookies  Cookies
	services Directory
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithSetupURL overrides the setup web service base URL.
func WithSetupURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.setupURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent overrides the default browser user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.ua = ua
	}
}

// WithLogger sets the logger. Defaults to a NopLogger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// New creates a Client for the given cookies. It fails with a
// *ConfigError if the serialized cookies cannot be sent as a header.
func New(cookies Cookies, opts ...Option) (*Client, error) {
	c := &Client{
		hc:       &http.Client{CheckRedirect: RedirectPolicy(DefaultMaxRedirects)},
		l:        logger.NewNopLogger(),
		setupURL: DEF_SETUP_URL,
		cookies:  append(Cookies(nil), cookies...),
	}
	for _, opt := range opts {
		opt(c)
	}
	header := c.cookies.String()
	if !httpguts.ValidHeaderFieldValue(header) {
		return nil, &ConfigError{Err: ErrInvalidCookieHeader}
	}
	c.headers = defaultHeaders(c.ua, header)
	return c, nil
}

// Cookies returns a copy of the current cookie set, including any
// cookies rotated by the last successful validation.
func (c *Client) Cookies() Cookies {
	return append(Cookies(nil), c.cookies...)
}

// Services returns the directory discovered by the last successful
// validation, or nil if the client was never validated.
func (c *Client) Services() Directory {
	if c.services == nil {
		return nil
	}
	return c.services.clone()
}

// Validate calls the setup validation endpoint, checks that Hide My
// Email is available and active, and merges the cookies set by the
// response into the client. On success it returns a Session bound to the
// discovered endpoints.
func (c *Client) Validate(ctx context.Context) (*Session, error) {
	url := c.setupURL + "/validate"
	c.l.Info("icloud: validating session (cookies: %s)", strings.Join(c.cookies.Names(), ","))

	resp, body, err := send(ctx, c.hc, c.headers, http.MethodPost, url, nil)
	if err != nil {
		c.l.Error("icloud: validate failed: %v", err)
		return nil, err
	}

	var vr validateResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, &DecodeError{Op: "validate", Err: err}
	}
	base, err := vr.Webservices.checkHME()
	if err != nil {
		c.l.Warning("icloud: %v", err)
		return nil, err
	}

	rotated := fromResponse(resp)
	c.services = vr.Webservices
	c.cookies = MergeCookies(c.cookies, rotated)
	c.headers.Update(COOKIE_KEY, c.cookies.String())
	if len(rotated) > 0 {
		c.l.Info("icloud: server refreshed cookies: %s", strings.Join(rotated.Names(), ","))
	}
	c.l.Info("icloud: session validated, %d services discovered", len(c.services))

	return &Session{
		hc:       c.hc,
		l:        c.l,
		headers:  c.headers.Clone(),
		services: c.services.clone(),
		baseURL:  base,
	}, nil
}

// send performs one authenticated round-trip. The response body is read
// and closed. Any 4xx or 5xx status is returned as a *StatusError.
func send(ctx context.Context, hc *http.Client, headers Headers, method, url string, in any) (*http.Response, []byte, error) {
	var payload io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, nil, err
	}
	headers.Set(req.Header)
	if in != nil {
		req.Header.Set(CONTENT_TYPE_KEY, "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 600 {
		return nil, nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return resp, body, nil
}
