// Package cache keeps translation results in a local SQLite database so a
// repeated export of unchanged content skips the network round trip for
// that language.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"adt/transport"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	frame_id     TEXT NOT NULL,
	lang         TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	result       TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	PRIMARY KEY (frame_id, lang, content_hash)
);`

// Cache is a translation result store. A nil *Cache is valid and caches
// nothing, so callers need no conditionals when caching is disabled.
// Get and Put may be called from concurrent language workers; the single
// connection only ever serves one of them at a time.
type Cache struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
}

// Open creates or opens the cache database at path. Use ":memory:" for an
// ephemeral cache in tests.
func Open(path string, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == ":memory:" {
		flags = append(flags, sqlite.OpenMemory)
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open translation cache '%s': %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare translation cache schema: %w", err)
	}
	return &Cache{conn: conn, log: log.Named("cache")}, nil
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// ContentHash fingerprints the translatable content of an export: node
// ids, plain text and markup. Frame metadata and previews do not
// participate, so cosmetic changes never invalidate cached translations.
func ContentHash(texts []transport.TextUnit) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t.NodeID))
		h.Write([]byte{0})
		h.Write([]byte(t.Characters))
		h.Write([]byte{0})
		h.Write([]byte(t.Markup))
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for (frame, lang, hash), or nil on miss.
func (c *Cache) Get(frameID, lang, hash string) *transport.TranslationResult {
	if c == nil || c.conn == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var result *transport.TranslationResult
	err := sqlitex.Execute(c.conn,
		`SELECT result FROM translations WHERE frame_id = ? AND lang = ? AND content_hash = ?`,
		&sqlitex.ExecOptions{
			Args: []any{frameID, lang, hash},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				r := &transport.TranslationResult{}
				if err := json.Unmarshal([]byte(stmt.ColumnText(0)), r); err != nil {
					return err
				}
				result = r
				return nil
			},
		})
	if err != nil {
		c.log.Warn("Translation cache read failed", zap.String("lang", lang), zap.Error(err))
		return nil
	}
	if result != nil {
		c.log.Debug("Translation cache hit", zap.String("frame", frameID), zap.String("lang", lang))
	}
	return result
}

// Put stores an authoritative result. Failures are logged and swallowed:
// the cache is an optimization, never a correctness dependency.
func (c *Cache) Put(frameID, lang, hash string, result *transport.TranslationResult) {
	if c == nil || c.conn == nil || result == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.log.Warn("Translation cache encode failed", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	err = sqlitex.Execute(c.conn,
		`INSERT OR REPLACE INTO translations (frame_id, lang, content_hash, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{frameID, lang, hash, string(data), time.Now().Unix()}})
	if err != nil {
		c.log.Warn("Translation cache write failed", zap.String("lang", lang), zap.Error(err))
	}
}
