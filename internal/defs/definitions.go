package defs

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"ferrule/internal/fingerprint"
	"ferrule/internal/source"
)

// DefPathHash is the position-independent identity of a definition.
type DefPathHash = fingerprint.Digest

// HirRef is the owner/local pair a definition was lowered to. It mirrors
// hir.HirID without importing it.
type HirRef struct {
	Owner LocalDefID
	Local uint32
}

type defEntry struct {
	key        DefKey
	hash       DefPathHash
	span       source.Span
	provenance source.SyntaxContext
}

type disambiguatorKey struct {
	parent LocalDefID
	data   DefPathData
}

// Definitions is the crate-wide table of definitions. Index i of the arena
// holds LocalDefID i.
type Definitions struct {
	crateName      string
	entries        *Arena[defEntry]
	disambiguators map[disambiguatorKey]uint32
	byHash         map[DefPathHash]LocalDefID
	hirIDs         []HirRef
	hirInit        bool
}

// NewDefinitions creates the table with the crate root already registered.
func NewDefinitions(crateName string, rootSpan source.Span) *Definitions {
	d := &Definitions{
		crateName:      crateName,
		entries:        NewArena[defEntry](64),
		disambiguators: make(map[disambiguatorKey]uint32),
		byHash:         make(map[DefPathHash]LocalDefID),
	}
	root := DefKey{Data: DefPathData{Kind: PathCrateRoot}}
	h := fingerprint.New()
	h.WriteString(crateName)
	hash := h.Sum()
	id := LocalDefID(d.entries.Allocate(defEntry{key: root, hash: hash, span: rootSpan}))
	d.byHash[hash] = id
	return d
}

func (d *Definitions) CrateName() string { return d.crateName }

// Create registers a definition under parent. Siblings sharing the same data
// receive increasing disambiguators.
func (d *Definitions) Create(parent LocalDefID, data DefPathData, provenance source.SyntaxContext, span source.Span) LocalDefID {
	parentEntry := d.entries.Get(uint32(parent))
	if parentEntry == nil {
		panic(fmt.Errorf("defs: create under unknown parent %v", parent))
	}
	if data.Kind == PathCrateRoot {
		panic(fmt.Errorf("defs: crate root can only be created once"))
	}
	dk := disambiguatorKey{parent: parent, data: data}
	dis := d.disambiguators[dk]
	d.disambiguators[dk] = dis + 1

	key := DefKey{Parent: parent, Data: data, Disambiguator: dis}
	h := fingerprint.New()
	h.WriteDigest(parentEntry.hash)
	h.WriteU8(uint8(data.Kind))
	h.WriteString(data.Name)
	h.WriteU32(dis)
	hash := h.Sum()

	id := LocalDefID(d.entries.Allocate(defEntry{key: key, hash: hash, span: span, provenance: provenance}))
	if _, dup := d.byHash[hash]; dup {
		panic(fmt.Errorf("defs: def path hash collision for %s", d.PathString(id)))
	}
	d.byHash[hash] = id
	return id
}

func (d *Definitions) entry(id LocalDefID) *defEntry {
	e := d.entries.Get(uint32(id))
	if e == nil {
		panic(fmt.Errorf("defs: unknown definition %v", id))
	}
	return e
}

func (d *Definitions) Key(id LocalDefID) DefKey                      { return d.entry(id).key }
func (d *Definitions) PathHash(id LocalDefID) DefPathHash            { return d.entry(id).hash }
func (d *Definitions) Span(id LocalDefID) source.Span                { return d.entry(id).span }
func (d *Definitions) Provenance(id LocalDefID) source.SyntaxContext { return d.entry(id).provenance }

// Parent returns the parent definition, or NoDefID for the crate root.
func (d *Definitions) Parent(id LocalDefID) LocalDefID { return d.entry(id).key.Parent }

// ByHash maps a path hash back to a definition.
func (d *Definitions) ByHash(hash DefPathHash) (LocalDefID, bool) {
	id, ok := d.byHash[hash]
	return id, ok
}

// Len returns the number of definitions including the crate root.
func (d *Definitions) Len() int {
	return int(d.entries.Len())
}

// All iterates definitions in creation order.
func (d *Definitions) All() []LocalDefID {
	n := d.entries.Len()
	out := make([]LocalDefID, 0, n)
	for i := uint32(1); i <= n; i++ {
		out = append(out, LocalDefID(i))
	}
	return out
}

// PathString renders a path such as `demo::foo::{opaque#0}::'a`.
func (d *Definitions) PathString(id LocalDefID) string {
	var parts []string
	for cur := id; cur.IsValid(); cur = d.entry(cur).key.Parent {
		key := d.entry(cur).key
		if key.Data.Kind == PathCrateRoot {
			parts = append(parts, d.crateName)
			break
		}
		part := key.Data.String()
		if !key.Data.Kind.hasName() || key.Disambiguator != 0 {
			part = strings.TrimSuffix(part, "}") + "#" + strconv.FormatUint(uint64(key.Disambiguator), 10)
			if !key.Data.Kind.hasName() {
				part += "}"
			}
		}
		parts = append(parts, part)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// InitHirMapping records the def -> HirID mapping produced by lowering. It
// may only be called once.
func (d *Definitions) InitHirMapping(mapping map[LocalDefID]HirRef) {
	if d.hirInit {
		panic(fmt.Errorf("defs: def -> hir mapping initialised twice"))
	}
	d.hirIDs = make([]HirRef, d.entries.Len()+1)
	for def, ref := range mapping {
		if int(def) >= len(d.hirIDs) {
			panic(fmt.Errorf("defs: mapping for unknown definition %v", def))
		}
		d.hirIDs[def] = ref
	}
	d.hirInit = true
}

// HirRef returns the lowered identity of def. Definitions that produced no
// HIR node (for instance captured lifetimes that were filtered out) report false.
func (d *Definitions) HirRef(def LocalDefID) (HirRef, bool) {
	if !d.hirInit || int(def) >= len(d.hirIDs) {
		return HirRef{}, false
	}
	ref := d.hirIDs[def]
	return ref, ref.Owner.IsValid()
}

// Index converts a slice position into a LocalDefID.
func Index(i int) LocalDefID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("defs: index overflow: %w", err))
	}
	return LocalDefID(v)
}
