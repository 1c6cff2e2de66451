package cookies

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

type row struct {
	Name, Value, Host, Path string
	Expiry                  int64
	Secure, HttpOnly        int
	Encrypted               []byte
}

func writeFirefoxStore(t *testing.T, path string, rows ...row) string {
	t.Helper()
	return writeStore(t, path, `CREATE TABLE moz_cookies (
		id INTEGER PRIMARY KEY, name TEXT, value TEXT, host TEXT, path TEXT,
		expiry INTEGER, isSecure INTEGER, isHttpOnly INTEGER)`,
		`INSERT INTO moz_cookies (name, value, host, path, expiry, isSecure, isHttpOnly) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt, r row) error {
			_, err := stmt.Exec(r.Name, r.Value, r.Host, r.Path, r.Expiry, r.Secure, r.HttpOnly)
			return err
		}, rows)
}

func writeChromiumStore(t *testing.T, path string, rows ...row) string {
	t.Helper()
	return writeStore(t, path, `CREATE TABLE cookies (
		creation_utc INTEGER, name TEXT, value TEXT, host_key TEXT, path TEXT,
		expires_utc INTEGER, is_secure INTEGER, is_httponly INTEGER, encrypted_value BLOB DEFAULT '')`,
		`INSERT INTO cookies (creation_utc, name, value, host_key, path, expires_utc, is_secure, is_httponly, encrypted_value)
		VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt, r row) error {
			enc := r.Encrypted
			if enc == nil {
				enc = []byte{}
			}
			_, err := stmt.Exec(r.Name, r.Value, r.Host, r.Path, r.Expiry, r.Secure, r.HttpOnly, enc)
			return err
		}, rows)
}

func writeStore(t *testing.T, path, ddl, insert string, exec func(*sql.Stmt, row) error, rows []row) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("create table: %v", err)
	}
	stmt, err := db.Prepare(insert)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if err := exec(stmt, r); err != nil {
			t.Fatalf("insert %s: %v", r.Name, err)
		}
	}
	return path
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// toChromium converts Unix seconds to the Chromium expiry encoding.
func toChromium(unix int64) int64 {
	return (unix + windowsEpochOffset) * 1_000_000
}
