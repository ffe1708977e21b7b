package storage

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// IsPostgres reports whether conn looks like a PostgreSQL connection string
// rather than a SQLite file path
func IsPostgres(conn string) bool {
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		return true
	}
	// key=value DSN, e.g. "host=localhost dbname=streaklit"
	for _, field := range strings.Fields(conn) {
		key, _, ok := strings.Cut(field, "=")
		if ok && (strings.EqualFold(key, "host") || strings.EqualFold(key, "dbname")) {
			return true
		}
	}
	return false
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string carries a password
func HasEmbeddedCredentials(conn string) bool {
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		u, err := url.Parse(conn)
		if err != nil || u.User == nil {
			return false
		}
		_, set := u.User.Password()
		return set
	}
	for _, field := range strings.Fields(conn) {
		key, _, ok := strings.Cut(field, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "password") {
			return true
		}
	}
	return false
}

// ExpandPath resolves a leading "~/" to the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
