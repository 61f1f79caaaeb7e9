package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/coralvm/coral/binfmt"
	"github.com/coralvm/coral/verifier"
)

// Current schema version - increment when Result format changes
const cacheSchemaVersion uint16 = 1

// Digest is the content hash keying cache entries.
type Digest [sha256.Size]byte

// DigestOf hashes raw module bytes.
func DigestOf(data []byte) Digest {
	return sha256.Sum256(data)
}

// Result is one cached verification outcome. For a rejected module the
// violation triple is stored so the rejection is reproduced verbatim
// without re-running the check.
type Result struct {
	Schema   uint16
	Verified bool
	Table    binfmt.TableKind
	Index    int
	Reason   verifier.Reason
}

// DiskCache stores verification results by content digest on disk.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location for the given application name.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a disk cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "mods"), 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "mods", hex.EncodeToString(key[:])+".bin")
}

// Lookup returns the cached result for key, if present and readable.
// A corrupt or stale-schema entry is treated as a miss.
func (c *DiskCache) Lookup(key Digest) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return Result{}, false
	}
	var res Result
	if err := msgpack.Unmarshal(data, &res); err != nil {
		return Result{}, false
	}
	if res.Schema != cacheSchemaVersion {
		return Result{}, false
	}
	return res, true
}

// Store records the result for key. A failed write is not fatal to the
// caller; the entry is simply absent next time.
func (c *DiskCache) Store(key Digest, res Result) error {
	res.Schema = cacheSchemaVersion

	data, err := msgpack.Marshal(&res)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.pathFor(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
