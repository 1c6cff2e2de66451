package cookies

import (
	"bufio"
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

var sqliteMagic = []byte("SQLite format 3\x00")

// DetectFormat sniffs the file at path.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("open cookie store: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FormatUnknown, err
	}
	if info.IsDir() {
		return FormatUnknown, fmt.Errorf("%s is a directory: %w", path, ErrUnsupportedFormat)
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(len(sqliteMagic))
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("read cookie store: %w", err)
	}
	if bytes.Equal(head, sqliteMagic) {
		return sqliteFormat(path)
	}

	line, _ := br.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "# Netscape HTTP Cookie File" || line == "# HTTP Cookie File" {
		return FormatNetscape, nil
	}
	return FormatUnknown, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func sqliteFormat(path string) (Format, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return FormatUnknown, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	for _, s := range []schema{firefoxSchema, chromiumSchema} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, s.table).Scan(&name)
		if err == nil {
			return s.format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}
