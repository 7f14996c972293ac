package cache

import (
	"context"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileCache stores one file per entry under dir/<kind>/<xx>/<hash>, where
// kind is the key's [KeyKind] and xx the first two hex digits of the key's
// hash. Each file starts with the expiry as 8 big-endian bytes of Unix
// nanoseconds (zero for none), followed by the payload.
type FileCache struct {
	dir string
}

const headerSize = 8

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// DefaultDir returns the per-user cache directory, $XDG_CACHE_HOME/atlas on
// Linux.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "atlas"), nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(raw) < headerSize || expired(raw, time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return raw[headerSize:], true, nil
}

// Set writes the entry to a temporary file and renames it into place, so
// readers never see a partial entry. A zero ttl never expires.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	raw := make([]byte, headerSize+len(data))
	if ttl > 0 {
		binary.BigEndian.PutUint64(raw, uint64(time.Now().Add(ttl).UnixNano()))
	}
	copy(raw[headerSize:], data)

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(raw)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry.
func (c *FileCache) Clear(ctx context.Context) error {
	_, err := c.ClearCount(ctx)
	return err
}

// ClearCount removes every kind directory and reports how many entries they
// held. The cache root itself is kept.
func (c *FileCache) ClearCount(ctx context.Context) (int, error) {
	kinds, err := c.kinds()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		n, err := c.walk(kind, func(string, []byte) {})
		if err != nil {
			return count, err
		}
		if err := os.RemoveAll(filepath.Join(c.dir, kind)); err != nil {
			return count, err
		}
		count += n
	}
	return count, nil
}

// KindUsage summarizes the entries of one key kind.
type KindUsage struct {
	Kind    string
	Entries int
	Bytes   int64
	Expired int
}

// Usage reports per-kind entry counts and payload sizes, sorted by kind.
// Expired entries are counted but not removed.
func (c *FileCache) Usage(ctx context.Context) ([]KindUsage, error) {
	kinds, err := c.kinds()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	usage := make([]KindUsage, 0, len(kinds))
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := KindUsage{Kind: kind}
		n, err := c.walk(kind, func(_ string, raw []byte) {
			if len(raw) < headerSize || expired(raw, now) {
				u.Expired++
				return
			}
			u.Bytes += int64(len(raw) - headerSize)
		})
		if err != nil {
			return nil, err
		}
		u.Entries = n
		usage = append(usage, u)
	}
	sort.Slice(usage, func(i, j int) bool { return usage[i].Kind < usage[j].Kind })
	return usage, nil
}

// kinds lists the kind directories under the root.
func (c *FileCache) kinds() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var kinds []string
	for _, e := range entries {
		if e.IsDir() {
			kinds = append(kinds, e.Name())
		}
	}
	return kinds, nil
}

// walk calls fn with the contents of every entry of kind and returns the
// number of entries. Temporary files are skipped.
func (c *FileCache) walk(kind string, fn func(path string, raw []byte)) (int, error) {
	n := 0
	err := filepath.WalkDir(filepath.Join(c.dir, kind), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".bin" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		n++
		fn(path, raw)
		return nil
	})
	return n, err
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, KeyKind(key), h[:2], h[2:]+".bin")
}

func expired(raw []byte, now time.Time) bool {
	exp := int64(binary.BigEndian.Uint64(raw[:headerSize]))
	return exp != 0 && now.UnixNano() > exp
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
