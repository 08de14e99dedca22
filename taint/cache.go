// Package taint orchestrates interprocedural taint propagation over the
// call-graph summaries produced by graph/callgraph/analysis/taint, and
// caches the expensive per-function CFG-refined analysis so repeat runs
// over an unchanged file skip straight to the cached verdict.
package taint

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"
)

const (
	cacheMaxEntries  = 10000
	cacheEvictFactor = 10 // evict 1/10th on overflow, matching the python cache manager
	inProcessLRUSize = 2048
)

// CacheEntry is one cached analysis result, keyed by function signature and
// entry-state hash.
type CacheEntry struct {
	FunctionSignature string
	EntryStateHash    string
	AnalysisResult    string
	VulnerablePaths   string
	FileMtime         int64
	CreatedAt         int64
	HitCount          int
	LastAccessed      int64
}

// Cache is a SQLite-backed persistent cache for CFG-refined taint analysis
// results, ported from original_source's CFGCacheManager, fronted by an
// in-process LRU so hot entries skip the DB round trip entirely.
type Cache struct {
	db    *sql.DB
	mem   *lru.Cache[string, CacheEntry]
	debug bool
}

// OpenCache opens (creating if absent) the cache database at dbPath, e.g.
// ".pf/.cache/cfg_analysis_cache.db".
func OpenCache(dbPath string) (*Cache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("taint: create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("taint: open cache db: %w", err)
	}
	if _, err := db.Exec(createCacheTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("taint: create cache table: %w", err)
	}
	if _, err := db.Exec(createCacheLookupIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("taint: create lookup index: %w", err)
	}
	if _, err := db.Exec(createCacheLRUIndexSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("taint: create lru index: %w", err)
	}

	mem, err := lru.New[string, CacheEntry](inProcessLRUSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db:    db,
		mem:   mem,
		debug: os.Getenv("THEAUDITOR_CACHE_DEBUG") != "",
	}, nil
}

const createCacheTableSQL = `CREATE TABLE IF NOT EXISTS cfg_analysis_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	function_signature TEXT,
	entry_state_hash TEXT,
	analysis_result TEXT,
	vulnerable_paths TEXT,
	file_mtime INTEGER,
	created_at INTEGER,
	hit_count INTEGER DEFAULT 0,
	last_accessed INTEGER,
	UNIQUE(function_signature, entry_state_hash)
)`

const createCacheLookupIndexSQL = `CREATE INDEX IF NOT EXISTS idx_cache_lookup
	ON cfg_analysis_cache(function_signature, entry_state_hash)`

const createCacheLRUIndexSQL = `CREATE INDEX IF NOT EXISTS idx_cache_lru
	ON cfg_analysis_cache(last_accessed)`

// HashState produces a stable hash of an entry state map for cache keying,
// matching the python cache manager's sort-keys-then-md5 approach.
func HashState(state map[string]any) string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]any, len(state))
	for _, k := range keys {
		ordered[k] = state[k]
	}
	buf, _ := json.Marshal(ordered)
	sum := md5.Sum(buf)
	return hex.EncodeToString(sum[:])
}

func cacheKey(functionSig, stateHash string) string {
	return functionSig + "\x00" + stateHash
}

// Get retrieves a cached analysis result, or ok=false on miss or a
// stale entry (file modified since caching).
func (c *Cache) Get(filePath, functionName string, state map[string]any) (result string, ok bool) {
	fi, err := os.Stat(filePath)
	if err != nil {
		return "", false
	}
	mtime := fi.ModTime().Unix()
	funcSig := filePath + ":" + functionName
	stateHash := HashState(state)
	key := cacheKey(funcSig, stateHash)

	if entry, found := c.mem.Get(key); found && entry.FileMtime >= mtime {
		c.trace("hit (memory) for %s", functionName)
		return entry.AnalysisResult, true
	}

	var result_, id string
	var cachedMtime int64
	row := c.db.QueryRow(`SELECT analysis_result, file_mtime, id FROM cfg_analysis_cache
		WHERE function_signature = ? AND entry_state_hash = ?`, funcSig, stateHash)
	if err := row.Scan(&result_, &cachedMtime, &id); err != nil {
		c.trace("miss for %s", functionName)
		return "", false
	}
	if cachedMtime < mtime {
		c.trace("stale cache for %s (file modified)", functionName)
		return "", false
	}

	c.trace("hit (db) for %s", functionName)
	now := time.Now().Unix()
	c.db.Exec(`UPDATE cfg_analysis_cache SET hit_count = hit_count + 1, last_accessed = ? WHERE id = ?`, now, id)
	c.mem.Add(key, CacheEntry{FunctionSignature: funcSig, EntryStateHash: stateHash, AnalysisResult: result_, FileMtime: mtime, LastAccessed: now})
	return result_, true
}

// Put stores an analysis result, evicting the oldest 10% of entries if the
// table has grown past cacheMaxEntries.
func (c *Cache) Put(filePath, functionName string, state map[string]any, result string) error {
	fi, err := os.Stat(filePath)
	if err != nil {
		return nil
	}
	mtime := fi.ModTime().Unix()
	funcSig := filePath + ":" + functionName
	stateHash := HashState(state)
	now := time.Now().Unix()

	c.trace("caching result for %s", functionName)
	if _, err := c.db.Exec(`INSERT OR REPLACE INTO cfg_analysis_cache
		(function_signature, entry_state_hash, analysis_result, file_mtime, created_at, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?)`, funcSig, stateHash, result, mtime, now, now); err != nil {
		return fmt.Errorf("taint: cache put: %w", err)
	}

	c.mem.Add(cacheKey(funcSig, stateHash), CacheEntry{
		FunctionSignature: funcSig, EntryStateHash: stateHash, AnalysisResult: result,
		FileMtime: mtime, CreatedAt: now, LastAccessed: now,
	})

	return c.evictIfNeeded()
}

func (c *Cache) evictIfNeeded() error {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM cfg_analysis_cache").Scan(&count); err != nil {
		return err
	}
	if count <= cacheMaxEntries {
		return nil
	}
	toDelete := count / cacheEvictFactor
	c.trace("evicting %d entries", toDelete)
	_, err := c.db.Exec(`DELETE FROM cfg_analysis_cache WHERE id IN (
		SELECT id FROM cfg_analysis_cache ORDER BY last_accessed ASC LIMIT ?)`, toDelete)
	return err
}

// Stats reports aggregate cache usage.
type Stats struct {
	TotalEntries int
	TotalHits    int
	AvgHits      float64
}

func (c *Cache) Stats() (Stats, error) {
	var s Stats
	row := c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(hit_count),0), COALESCE(AVG(hit_count),0) FROM cfg_analysis_cache`)
	err := row.Scan(&s.TotalEntries, &s.TotalHits, &s.AvgHits)
	return s, err
}

func (c *Cache) trace(format string, args ...any) {
	if !c.debug {
		return
	}
	fmt.Fprintf(os.Stderr, "[CACHE] "+format+"\n", args...)
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
