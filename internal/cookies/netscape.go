package cookies

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape reads the cookies of domain from a Netscape cookie file.
// Malformed lines are skipped; their count is returned.
func ParseNetscape(r io.Reader, domain string, now time.Time) ([]Cookie, int, error) {
	var (
		cookies []Cookie
		skipped int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		httpOnly := strings.HasPrefix(line, httpOnlyPrefix)
		if httpOnly {
			line = line[len(httpOnlyPrefix):]
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		f := strings.Split(line, "\t")
		if len(f) != 7 {
			skipped++
			continue
		}
		expiry, err := strconv.ParseInt(f[4], 10, 64)
		if err != nil {
			skipped++
			continue
		}
		if !matchesDomain(f[0], domain) {
			continue
		}
		c := Cookie{
			Name:     f[5],
			Value:    f[6],
			Domain:   f[0],
			Path:     f[2],
			Secure:   strings.EqualFold(f[3], "TRUE"),
			HttpOnly: httpOnly,
		}
		if expiry > 0 {
			c.Expiry = time.Unix(expiry, 0)
			if c.Expiry.Before(now) {
				continue
			}
		}
		cookies = append(cookies, c)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read netscape cookie file: %w", err)
	}
	return cookies, skipped, nil
}

func readNetscape(path, domain string) ([]Cookie, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open cookie store: %w", err)
	}
	defer f.Close()
	return ParseNetscape(f, domain, time.Now())
}

// matchesDomain reports whether a cookie scoped to host is sent to domain
// or any of its subdomains.
func matchesDomain(host, domain string) bool {
	host = strings.TrimPrefix(host, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}
