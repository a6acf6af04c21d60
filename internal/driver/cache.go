package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"ferrule/internal/defs"
	"ferrule/internal/fingerprint"
	"ferrule/internal/hir"
)

// hashCacheSchema is bumped whenever cachePayload changes shape.
const hashCacheSchema uint16 = 2

// HashCache keeps the owner hashes of every crate from the previous run so
// a run can tell which owners changed. Safe for concurrent use.
type HashCache struct {
	mu  sync.Mutex
	dir string
}

type cachePayload struct {
	Schema    uint16
	Crate     string
	CrateHash fingerprint.Digest
	// Owners is keyed by the hex def-path hash of the owner.
	Owners map[string]cachedOwner
}

type cachedOwner struct {
	Path     string
	Hash     fingerprint.Digest
	AttrHash fingerprint.Digest
}

// Delta lists the owners that differ from the cached run, by def path.
type Delta struct {
	// Fresh is set when nothing was cached for the crate.
	Fresh   bool
	Added   []string
	Changed []string
	Removed []string
}

// Empty reports whether the crate lowered to exactly the cached owners.
func (d Delta) Empty() bool {
	return !d.Fresh && len(d.Added)+len(d.Changed)+len(d.Removed) == 0
}

// OpenHashCache creates dir if needed.
func OpenHashCache(dir string) (*HashCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &HashCache{dir: dir}, nil
}

func (c *HashCache) pathFor(crate string) string {
	// crate names are identifiers, but the key keeps odd names off the
	// file system
	return filepath.Join(c.dir, "owners", fingerprint.OfString(crate).String()+".mp")
}

// Update compares the owners of lowered with the cached ones, stores the new
// hashes and returns what changed.
func (c *HashCache) Update(lowered *hir.Crate, d *defs.Definitions) (Delta, error) {
	if c == nil {
		return Delta{}, nil
	}
	next := payloadOf(lowered, d)

	c.mu.Lock()
	defer c.mu.Unlock()

	var prev cachePayload
	found, err := c.read(lowered.Name, &prev)
	if err != nil {
		return Delta{}, err
	}
	delta := Delta{Fresh: !found || prev.Schema != hashCacheSchema}
	if !delta.Fresh && prev.CrateHash != next.CrateHash {
		delta = diffOwners(prev.Owners, next.Owners)
	}
	if err := c.write(lowered.Name, next); err != nil {
		return Delta{}, err
	}
	return delta, nil
}

func payloadOf(lowered *hir.Crate, d *defs.Definitions) *cachePayload {
	p := &cachePayload{
		Schema:    hashCacheSchema,
		Crate:     lowered.Name,
		CrateHash: lowered.Hash,
		Owners:    make(map[string]cachedOwner),
	}
	for _, def := range lowered.OwnerDefs() {
		o := lowered.Owner(def)
		p.Owners[d.PathHash(def).String()] = cachedOwner{
			Path:     d.PathString(def),
			Hash:     o.Nodes.Hash,
			AttrHash: o.AttrHash,
		}
	}
	return p
}

func diffOwners(prev, next map[string]cachedOwner) Delta {
	var delta Delta
	for key, o := range next {
		old, ok := prev[key]
		switch {
		case !ok:
			delta.Added = append(delta.Added, o.Path)
		case old.Hash != o.Hash, old.AttrHash != o.AttrHash:
			delta.Changed = append(delta.Changed, o.Path)
		}
	}
	for key, o := range prev {
		if _, ok := next[key]; !ok {
			delta.Removed = append(delta.Removed, o.Path)
		}
	}
	sort.Strings(delta.Added)
	sort.Strings(delta.Changed)
	sort.Strings(delta.Removed)
	return delta
}

func (c *HashCache) read(crate string, out *cachePayload) (bool, error) {
	f, err := os.Open(c.pathFor(crate))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		// an unreadable entry is treated as missing and overwritten
		return false, nil
	}
	return true, nil
}

func (c *HashCache) write(crate string, p *cachePayload) error {
	path := c.pathFor(crate)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name()) //nolint:errcheck

	if err := msgpack.NewEncoder(f).Encode(p); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// Drop removes every cached crate.
func (c *HashCache) Drop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "owners"))
}
