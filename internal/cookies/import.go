package cookies

import (
	"fmt"
	"strings"

	"github.com/hmectl/hmectl/pkg/icloud"
	"github.com/hmectl/hmectl/pkg/logger"
)

// Auto makes Import scan the installed browsers.
const Auto = "auto"

// Result is the outcome of an import.
type Result struct {
	Cookies []Cookie
	Source  Source
	// Skipped counts malformed lines of a Netscape file.
	Skipped int
}

// ICloud returns the cookies as a request cookie set. When a name occurs
// more than once, the first one wins; stores are read most specific path
// first.
func (r *Result) ICloud() icloud.Cookies {
	seen := make(map[string]bool, len(r.Cookies))
	out := make(icloud.Cookies, 0, len(r.Cookies))
	for _, c := range r.Cookies {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, icloud.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Importer reads iCloud cookies from browser stores.
type Importer struct {
	l        logger.Logger
	domain   string
	browsers func() []browser
}

// NewImporter returns an Importer for icloud.com.
func NewImporter(l logger.Logger) *Importer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Importer{l: l, domain: Domain, browsers: systemBrowsers}
}

// Import reads the store at path, or scans the installed browsers when
// path is Auto. The result must contain at least one iCloud session
// cookie.
func (im *Importer) Import(path string) (*Result, error) {
	if path == "" || strings.EqualFold(path, Auto) {
		return im.detect()
	}
	res, err := im.importFile(path)
	if err != nil {
		return nil, err
	}
	if !hasSession(res.Cookies) {
		return nil, ErrNoSession
	}
	return res, nil
}

func (im *Importer) importFile(path string) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	res := &Result{Source: Source{Path: path, Format: format, Browser: format.String()}}
	switch format {
	case FormatFirefox:
		res.Cookies, err = readSQLite(path, firefoxSchema, im.domain)
	case FormatChromium:
		res.Cookies, err = readSQLite(path, chromiumSchema, im.domain)
	case FormatNetscape:
		res.Cookies, res.Skipped, err = readNetscape(path, im.domain)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		im.l.Warning("cookies: skipped %d malformed lines in %s", res.Skipped, path)
	}
	im.l.Info("cookies: read %d %s cookies from %s store (%s)",
		len(res.Cookies), im.domain, format, strings.Join(names(res.Cookies), ","))
	return res, nil
}

func (im *Importer) detect() (*Result, error) {
	var (
		tried     []string
		signedOut bool
	)
	for _, b := range im.browsers() {
		tried = append(tried, b.Name)
		for _, store := range b.stores() {
			res, err := im.importFile(store)
			if err != nil {
				im.l.Warning("cookies: %s: %v", b.Name, err)
				continue
			}
			if !hasSession(res.Cookies) {
				signedOut = true
				continue
			}
			res.Source.Browser = b.Name
			return res, nil
		}
	}
	if signedOut {
		return nil, ErrNoSession
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrNoBrowser, strings.Join(tried, ", "))
}

func hasSession(cookies []Cookie) bool {
	for _, c := range cookies {
		if c.Session() {
			return true
		}
	}
	return false
}

func names(cookies []Cookie) []string {
	out := make([]string, len(cookies))
	for i, c := range cookies {
		out[i] = c.Name
	}
	return out
}
