package cookies

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	_ "modernc.org/sqlite"
)

// windowsEpochOffset is the number of seconds between 1601-01-01 and the
// Unix epoch. Chromium stores expiry as microseconds since 1601.
const windowsEpochOffset int64 = 11_644_473_600

type schema struct {
	format Format
	table  string
	query  string
	expiry func(int64) time.Time
}

var firefoxSchema = schema{
	format: FormatFirefox,
	table:  "moz_cookies",
	query: `SELECT name, value, host, path, expiry, isSecure, isHttpOnly, ''
		FROM moz_cookies
		WHERE host = ? OR host = ? OR host LIKE ?
		ORDER BY length(path) DESC, name`,
	expiry: firefoxExpiry,
}

var chromiumSchema = schema{
	format: FormatChromium,
	table:  "cookies",
	query: `SELECT name, value, host_key, path, expires_utc, is_secure, is_httponly, hex(encrypted_value)
		FROM cookies
		WHERE host_key = ? OR host_key = ? OR host_key LIKE ?
		ORDER BY length(path) DESC, name`,
	expiry: chromiumExpiry,
}

// firefoxExpiry accepts both seconds and the milliseconds newer Firefox
// releases write.
func firefoxExpiry(v int64) time.Time {
	if v > 1e11 {
		return time.UnixMilli(v)
	}
	return time.Unix(v, 0)
}

func chromiumExpiry(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(v/1_000_000-windowsEpochOffset, 0)
}

// copyFs is where SQLite stores are copied before being opened. Browsers
// keep their database locked while running.
var copyFs afero.Fs = afero.NewOsFs()

// snapshot copies a SQLite store and its -wal/-shm companions into a
// temporary directory.
func snapshot(src string) (string, func(), error) {
	dir, err := afero.TempDir(copyFs, "", "hmectl-cookies-")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = copyFs.RemoveAll(dir) }

	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		cleanup()
		return "", nil, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if ok, _ := afero.Exists(copyFs, src+suffix); ok {
			_ = copyFile(src+suffix, dst+suffix)
		}
	}
	return dst, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := copyFs.Open(src)
	if err != nil {
		return fmt.Errorf("open cookie store: %w", err)
	}
	defer in.Close()
	out, err := copyFs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy cookie store: %w", err)
	}
	return out.Close()
}

// readSQLite returns the cookies of domain from a copy of the store at
// path. Expired cookies are dropped.
func readSQLite(path string, s schema, domain string) ([]Cookie, error) {
	copied, cleanup, err := snapshot(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	db, err := sql.Open("sqlite", "file:"+copied+"?immutable=1")
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", s.format, err)
	}
	defer db.Close()

	rows, err := db.Query(s.query, domain, "."+domain, "%."+domain)
	if err != nil {
		return nil, fmt.Errorf("query %s store: %w", s.format, err)
	}
	defer rows.Close()

	now := time.Now()
	var (
		cookies   []Cookie
		encrypted int
	)
	for rows.Next() {
		var (
			c                Cookie
			expiry           int64
			secure, httpOnly int
			enc              string
		)
		if err := rows.Scan(&c.Name, &c.Value, &c.Domain, &c.Path, &expiry, &secure, &httpOnly, &enc); err != nil {
			return nil, fmt.Errorf("scan %s store: %w", s.format, err)
		}
		if c.Value == "" && enc != "" {
			encrypted++
			continue
		}
		c.Expiry = s.expiry(expiry)
		if !c.Expiry.IsZero() && c.Expiry.Before(now) {
			continue
		}
		c.Secure = secure != 0
		c.HttpOnly = httpOnly != 0
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s store: %w", s.format, err)
	}
	if len(cookies) == 0 && encrypted > 0 {
		return nil, ErrEncrypted
	}
	return cookies, nil
}
