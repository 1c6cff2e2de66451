package icloud

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hmectl/hmectl/pkg/logger"
)

// Session is a validated iCloud session. It can only be obtained from
// Client.Validate and is immutable, so it is safe for concurrent use.
//
// The Cookie header of a Session is the snapshot taken when it was
// validated. Cookies rotated on later calls are not tracked; validate
// again to refresh them.
type Session struct {
	hc       *http.Client
	l        logger.Logger
	headers  Headers
	services Directory
	baseURL  string
}

// BaseURL returns the Hide My Email endpoint confirmed at validation.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// ServiceURL looks up the URL of any discovered web service.
func (s *Session) ServiceURL(name string) (string, bool) {
	svc, ok := s.services[name]
	if !ok || svc.GetURL() == "" {
		return "", false
	}
	return *svc.URL, true
}

// Services returns a copy of the discovered web service directory.
func (s *Session) Services() Directory {
	return s.services.clone()
}

// CookieHeader returns the Cookie header sent on every call.
func (s *Session) CookieHeader() string {
	return s.headers.Value(COOKIE_KEY)
}

// Logger returns the logger the session was validated with.
func (s *Session) Logger() logger.Logger {
	if s.l == nil {
		return logger.NewNopLogger()
	}
	return s.l
}

// DoJSON sends an authenticated request with in as JSON body (nil for
// none) and decodes the response into out. The op name labels decode
// errors.
func (s *Session) DoJSON(ctx context.Context, op, method, url string, in, out any) error {
	hc := s.hc
	if hc == nil {
		hc = http.DefaultClient
	}
	_, body, err := send(ctx, hc, s.headers, method, url, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}
