package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// Open connects to a SQLite database.
// dsn is a file path or ":memory:"; wal switches the journal to WAL; syncMode sets the
// synchronous pragma (OFF, NORMAL, FULL, EXTRA; empty keeps the driver default).
func Open(dsn string, wal bool, syncMode string) (*sql.DB, error) {
	params := url.Values{}
	if wal {
		params.Add("_journal_mode", "WAL")
	}
	if syncMode != "" {
		mode := strings.ToUpper(syncMode)
		if !validSyncModes[mode] {
			return nil, fmt.Errorf("invalid sync mode %q: must be one of OFF, NORMAL, FULL, EXTRA", syncMode)
		}
		params.Add("_synchronous", mode)
	}
	params.Add("_busy_timeout", "5000")

	full := dsn
	if strings.Contains(dsn, "?") {
		full += "&" + params.Encode()
	} else {
		full += "?" + params.Encode()
	}

	db, err := sql.Open("sqlite3", full)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", dsn, err)
	}
	// Every connection to ":memory:" is a separate database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %q: %w", dsn, err)
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:")
}
