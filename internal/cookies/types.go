package cookies

import (
	"errors"
	"strings"
	"time"
)

// Domain is the cookie domain of the iCloud web apps.
const Domain = "icloud.com"

// Format is the on-disk format of a cookie store.
type Format int

const (
	FormatUnknown Format = iota
	FormatFirefox
	FormatChromium
	FormatNetscape
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "firefox"
	case FormatChromium:
		return "chromium"
	case FormatNetscape:
		return "netscape"
	}
	return "unknown"
}

var (
	ErrUnsupportedFormat = errors.New("unsupported cookie store")
	ErrNoBrowser         = errors.New("no supported browser cookie store found")
	ErrNoSession         = errors.New("no iCloud session cookies found, sign in to icloud.com in the browser first")
	ErrEncrypted         = errors.New("the browser encrypts its cookies, export them to a Netscape cookie file instead")
)

// Cookie is a cookie read from a browser store. Value is sensitive.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expiry   time.Time
	Secure   bool
	HttpOnly bool
}

// Session reports whether the cookie belongs to the iCloud web
// authentication set.
func (c Cookie) Session() bool {
	return strings.HasPrefix(c.Name, "X-APPLE-")
}

// Source describes where cookies were imported from.
type Source struct {
	Path    string
	Format  Format
	Browser string
}
