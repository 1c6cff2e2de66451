package icloud

import (
	"net/http"
	"strings"
)

const (
	cookieSeparator = "; "
	cookieAssign    = "="
)

// Cookie is a single name=value pair of a Cookie header.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Cookies is an ordered cookie set. Names are not required to be unique.
type Cookies []Cookie

// ParseCookies parses a raw Cookie header of the form "a=1; b=2".
// Each segment is split on its first '=' so values may contain '='.
// The first segment without a '=' fails the whole parse.
func ParseCookies(header string) (Cookies, error) {
	segments := strings.Split(header, cookieSeparator)
	cookies := make(Cookies, 0, len(segments))
	for _, segment := range segments {
		name, value, ok := strings.Cut(segment, cookieAssign)
		if !ok {
			return nil, &ParseCookieError{Segment: segment}
		}
		cookies = append(cookies, Cookie{Name: name, Value: value})
	}
	return cookies, nil
}

// String serializes the set into a Cookie header value, in stored order.
func (c Cookies) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, len(c))
	for i, x := range c {
		parts[i] = x.Name + cookieAssign + x.Value
	}
	return strings.Join(parts, cookieSeparator)
}

// Names returns the cookie names in stored order.
func (c Cookies) Names() []string {
	names := make([]string, len(c))
	for i, x := range c {
		names[i] = x.Name
	}
	return names
}

// Has reports whether a cookie with the given name is present.
func (c Cookies) Has(name string) bool {
	for _, x := range c {
		if x.Name == name {
			return true
		}
	}
	return false
}

// MergeCookies drops from existing every cookie whose name occurs in
// incoming and appends incoming after the survivors.
func MergeCookies(existing, incoming Cookies) Cookies {
	merged := make(Cookies, 0, len(existing)+len(incoming))
	for _, c := range existing {
		if incoming.Has(c.Name) {
			continue
		}
		merged = append(merged, c)
	}
	return append(merged, incoming...)
}

// fromResponse collects the Set-Cookie pairs of a response. Quoted
// values keep their quotes so they are sent back byte for byte.
func fromResponse(resp *http.Response) Cookies {
	rc := resp.Cookies()
	if len(rc) == 0 {
		return nil
	}
	cookies := make(Cookies, len(rc))
	for i, c := range rc {
		value := c.Value
		if c.Quoted {
			value = `"` + value + `"`
		}
		cookies[i] = Cookie{Name: c.Name, Value: value}
	}
	return cookies
}
