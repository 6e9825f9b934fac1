package openf1

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mateluky/f1-race-intelligence/internal/logging"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// responseCache is a TTL-bounded cache of raw API responses, keyed by
// endpoint+params. Session data is immutable once a session ends, so a
// long TTL costs nothing and spares the public API.
type responseCache struct {
	db  *sql.DB
	ttl time.Duration
}

func newResponseCache(path string, ttl time.Duration) (*responseCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}

	c := &responseCache{db: db, ttl: ttl}
	c.prune()
	return c, nil
}

// get returns the cached body for key if it is still fresh.
func (c *responseCache) get(key string) ([]byte, bool) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(`SELECT body, fetched_at FROM responses WHERE key = ?`, key).
		Scan(&body, &fetchedAt)
	if err != nil {
		return nil, false
	}
	if time.Since(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false
	}
	return body, true
}

// put stores a response body under key, replacing any stale entry.
func (c *responseCache) put(key string, body []byte) {
	_, err := c.db.Exec(`
		INSERT INTO responses (key, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at
	`, key, body, time.Now().Unix())
	if err != nil {
		logging.Debug("Cache write failed", "key", key, "error", err)
	}
}

// prune drops entries past TTL.
func (c *responseCache) prune() {
	cutoff := time.Now().Add(-c.ttl).Unix()
	if _, err := c.db.Exec(`DELETE FROM responses WHERE fetched_at < ?`, cutoff); err != nil {
		logging.Debug("Cache prune failed", "error", err)
	}
}

func (c *responseCache) close() {
	if c.db != nil {
		c.db.Close()
	}
}

// cacheKey derives a stable key from endpoint and params; params are
// sorted so map iteration order never splits the cache.
func cacheKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		b.WriteString("&")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}

	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:8])
}
