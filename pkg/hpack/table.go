package hpack

import (
	"fmt"
	"hash/fnv"
)

// Dynamic table — RFC 7541 Section 2.3.
//
// Table is the indexed hash map backing the encoder's dynamic table: an
// open-addressing Robin Hood hash map (indices) layered on a FIFO ring of
// header entries (slots), with a name-collision chain and byte-budgeted
// eviction. Dynamic indices are externally numbered from dynOffset (62)
// upward, newest entry first.
//
// A Table is owned by a single encoder stream context; it is not safe for
// concurrent use.
type Table struct {
	mask    uint64
	indices []*pos
	slots   ring

	// evicted counts popped slots. It is expected to wrap; logical indices
	// are compared against it by value, except for the chain-tail survival
	// check in indexOccupied, which compares by ordering and so assumes the
	// counter has not wrapped.
	evicted uint64

	size    int
	maxSize int
}

// slot is one live dynamic-table entry.
type slot struct {
	hash   hashValue
	header Header
	// next is the logical index of the next newer slot sharing this
	// header's name; hasNext is false if this is the newest in its chain.
	next    uint64
	hasNext bool
}

// pos is an index-map bucket: "the head of the same-name chain for this
// hash lives at logical index `index`".
type pos struct {
	index uint64
	hash  hashValue
}

type hashValue uint64

const (
	// hashSpace bounds the masked FNV-1a hash value; it is unrelated to any
	// single table's byte budget.
	hashSpace = 1 << 16
	dynOffset = 62
)

// ring is a growable FIFO of slots addressed by logical index. It wraps
// a plain Go slice used as a queue (push at the back, pop from the front)
// rather than a fixed-size circular buffer, since the Robin Hood index map
// already bounds how many live entries can exist via Capacity().
type ring struct {
	items []slot
}

func (r *ring) len() int { return len(r.items) }

func (r *ring) pushBack(s slot) { r.items = append(r.items, s) }

func (r *ring) popFront() slot {
	s := r.items[0]
	r.items = r.items[1:]
	return s
}

func (r *ring) at(i uint64) *slot { return &r.items[i] }

// Index describes the result of indexing a header against the table.
type Index struct {
	Kind   IndexKind
	Idx    int
	Header Header
}

// IndexKind enumerates the ways index() can resolve a header.
type IndexKind uint8

const (
	// Indexed means the header is already fully indexed; emit Idx alone.
	Indexed IndexKind = iota
	// Name means the name is indexed but not the value; emit a literal
	// with a name reference, do not index (sensitive or skip-value).
	Name
	// Inserted means the header was appended with incremental indexing;
	// emit a literal with a literal name.
	Inserted
	// InsertedValue means the header was appended; emit a literal with a
	// name reference.
	InsertedValue
	// NotIndexed means emit a literal without indexing at all.
	NotIndexed
)

func indexFromStatic(statikIdx int, statikOK, valueMatches bool, h Header) Index {
	if !statikOK {
		return Index{Kind: NotIndexed, Header: h}
	}
	if valueMatches {
		return Index{Kind: Indexed, Idx: statikIdx, Header: h}
	}
	return Index{Kind: Name, Idx: statikIdx, Header: h}
}

// New creates a Table with the given byte budget and initial index-map
// capacity. initialCapacity == 0 yields a table that lazily allocates on
// first insertion.
func New(maxSizeBytes, initialCapacity int) *Table {
	t := &Table{maxSize: maxSizeBytes}
	if initialCapacity == 0 {
		return t
	}
	rawCap := rawCapacity(initialCapacity)
	if rawCap < 8 {
		rawCap = 8
	}
	t.mask = uint64(rawCap - 1)
	t.indices = make([]*pos, rawCap)
	return t
}

// Capacity returns the number of live entries the ring may hold before the
// index map must grow.
func (t *Table) Capacity() int { return usableCapacity(len(t.indices)) }

// MaxSize returns the current byte budget.
func (t *Table) MaxSize() int { return t.maxSize }

// Len returns the number of live entries (test/diagnostic use).
func (t *Table) Len() int { return t.slots.len() }

// Size returns the current accounted byte size (test/diagnostic use).
func (t *Table) Size() int { return t.size }

// Index runs the full indexing policy pipeline for a single header.
func (t *Table) Index(h Header) Index {
	statikIdx, valueMatches, statikOK := StaticLookup(h)

	// nghttp2-derived policy: never touch the dynamic table for headers
	// that should only ever be referenced by name.
	if h.SkipValueIndex() {
		return indexFromStatic(statikIdx, statikOK, valueMatches, h)
	}

	// Already fully indexed by the static table.
	if statikOK && valueMatches {
		return Index{Kind: Indexed, Idx: statikIdx, Header: h}
	}

	// Refuse to index headers that would eat more than 3/4 of the budget.
	if h.Len()*4 > t.maxSize*3 {
		return indexFromStatic(statikIdx, statikOK, valueMatches, h)
	}

	return t.indexDynamic(h, statikIdx, statikOK, valueMatches)
}

func (t *Table) indexDynamic(h Header, statikIdx int, statikOK, valueMatches bool) Index {
	if h.Len()+t.size < t.maxSize || !h.IsSensitive() {
		t.reserveOne()
	}

	if len(t.indices) == 0 {
		// Table disabled (never allocated, or deliberately kept empty).
		return indexFromStatic(statikIdx, statikOK, valueMatches, h)
	}

	hv := hashName(h.Name())
	desired := desiredPos(t.mask, hv)
	probe := desired
	dist := uint64(0)

	for {
		if probe >= uint64(len(t.indices)) {
			probe = 0
		}

		p := t.indices[probe]
		if p == nil {
			return t.indexVacant(h, hv, dist, probe, statikIdx, statikOK, valueMatches)
		}

		theirDist := probeDistance(t.mask, p.hash, probe)
		slotIdx := p.index - t.evicted

		if theirDist < dist {
			return t.indexVacant(h, hv, dist, probe, statikIdx, statikOK, valueMatches)
		}
		if p.hash == hv && t.slots.at(slotIdx).header.Name() == h.Name() {
			return t.indexOccupied(h, hv, p.index, statikIdx, statikOK, valueMatches)
		}

		dist++
		probe++
	}
}

// dynIndex converts a ring position counted from the front (oldest, 0) into
// the externally visible HPACK dynamic index: 62 for the newest live entry,
// one higher for each entry older than that. The ring grows at the back,
// so the newest entry always sits there.
func (t *Table) dynIndex(realIdx uint64) int {
	return dynOffset + (t.slots.len() - 1 - int(realIdx))
}

// indexOccupied walks the same-name chain headed at logical index `index`
// looking for a value match.
func (t *Table) indexOccupied(h Header, hv hashValue, index uint64, statikIdx int, statikOK, valueMatches bool) Index {
	for {
		realIdx := index - t.evicted
		s := t.slots.at(realIdx)

		if s.header.ValueEq(h) {
			return Index{Kind: Indexed, Idx: t.dynIndex(realIdx), Header: h}
		}

		if s.hasNext {
			index = s.next
			continue
		}

		if h.IsSensitive() {
			return Index{Kind: Name, Idx: t.dynIndex(realIdx), Header: h}
		}

		t.updateSize(h.Len(), index)

		newIdx := uint64(t.slots.len())

		// If the previous chain tail has not been evicted since we looked
		// it up, link it forward to the slot we are about to append and
		// report it as the name reference. When it HAS been evicted, the
		// index-map bucket was already redirected during eviction to the
		// logical index this new slot is about to take, so the new slot
		// itself is the name reference, recorded here by position.
		var refIdx uint64
		if t.evicted <= index {
			refIdx = index - t.evicted
			t.slots.at(refIdx).next = newIdx + t.evicted
			t.slots.at(refIdx).hasNext = true
		} else {
			refIdx = newIdx
		}

		t.slots.pushBack(slot{hash: hv, header: h})

		return Index{Kind: InsertedValue, Idx: t.dynIndex(refIdx), Header: t.slots.at(newIdx).header}
	}
}

// indexVacant performs a Robin Hood insertion at the first vacant or
// stolen bucket found while probing.
func (t *Table) indexVacant(h Header, hv hashValue, dist, probe uint64, statikIdx int, statikOK, valueMatches bool) Index {
	if h.IsSensitive() {
		return indexFromStatic(statikIdx, statikOK, valueMatches, h)
	}

	// math.MaxUint64 stands in for the Rust original's usize::MAX sentinel:
	// there is no "previous chain tail" to re-anchor for a brand new name.
	evictedAny := t.updateSize(h.Len(), ^uint64(0))
	if evictedAny && dist != 0 {
		back := (probe - 1) & t.mask
		if p := t.indices[probe]; p != nil {
			theirDist := probeDistance(t.mask, p.hash, probe)
			if theirDist < dist {
				probe = back
			}
		} else {
			probe = back
		}
	}

	slotIdx := uint64(t.slots.len())
	posIdx := slotIdx + t.evicted

	t.slots.pushBack(slot{hash: hv, header: h})

	prev := t.indices[probe]
	t.indices[probe] = &pos{index: posIdx, hash: hv}

	if prev != nil {
		// Shift the displaced bucket chain forward by one.
		p := probe + 1
		for {
			if p >= uint64(len(t.indices)) {
				p = 0
			}
			cur := t.indices[p]
			t.indices[p] = prev
			if cur == nil {
				break
			}
			prev = cur
			p++
		}
	}

	if statikOK {
		return Index{Kind: InsertedValue, Idx: statikIdx, Header: t.slots.at(slotIdx).header}
	}
	return Index{Kind: Inserted, Idx: 0, Header: t.slots.at(slotIdx).header}
}

// Resize changes the byte budget. A new budget of 0 clears the table
// outright; otherwise entries are evicted until the new budget holds.
func (t *Table) Resize(newMax int) {
	t.maxSize = newMax

	if newMax == 0 {
		t.size = 0
		for i := range t.indices {
			t.indices[i] = nil
		}
		t.slots.items = nil
		t.evicted = 0
		return
	}

	t.converge(^uint64(0))
}

// updateSize accounts len bytes against the table and converges by
// eviction if that pushes size over budget. prevIdx is the logical index
// of the chain-tail slot the caller is in the middle of replacing, or
// ^uint64(0) if there is none.
func (t *Table) updateSize(length int, prevIdx uint64) bool {
	t.size += length
	return t.converge(prevIdx)
}

func (t *Table) converge(prevIdx uint64) bool {
	evictedAny := false
	for t.size > t.maxSize {
		evictedAny = true
		t.evict(prevIdx)
	}
	return evictedAny
}

// evict pops the oldest slot, frees its accounted bytes, and migrates or
// removes the index-map bucket that pointed at it.
func (t *Table) evict(prevIdx uint64) {
	s := t.slots.popFront()
	probe := desiredPos(t.mask, s.hash)
	t.size -= s.header.Len()

	justEvicted := t.evicted

	for {
		if probe >= uint64(len(t.indices)) {
			probe = 0
		}
		p := t.indices[probe]
		if p == nil {
			panic(fmt.Sprintf("hpack: missing index-map entry for evicted slot %d", justEvicted))
		}

		if p.index == justEvicted {
			switch {
			case s.hasNext:
				p.index = s.next
			case p.index == prevIdx:
				p.index = uint64(t.slots.len()+1) + t.evicted
			default:
				t.indices[probe] = nil
				t.removePhaseTwo(probe)
			}
			break
		}

		probe++
	}

	t.evicted++
}

// removePhaseTwo backward-shifts the tail of a Robin Hood cluster after a
// bucket was cleared outright, so no bucket ever sits farther from its ideal
// position than necessary, without leaving tombstones behind.
func (t *Table) removePhaseTwo(probe uint64) {
	lastProbe := probe
	p := probe + 1

	for {
		if p >= uint64(len(t.indices)) {
			p = 0
		}
		cur := t.indices[p]
		if cur == nil {
			return
		}
		if probeDistance(t.mask, cur.hash, p) == 0 {
			return
		}
		t.indices[lastProbe] = cur
		t.indices[p] = nil
		lastProbe = p
		p++
	}
}

// reserveOne makes room for one more entry when the ring is at capacity:
// it allocates an 8-bucket index map if none exists, otherwise doubles it.
func (t *Table) reserveOne() {
	n := t.slots.len()
	if n != t.Capacity() {
		return
	}
	if n == 0 {
		t.mask = 7
		t.indices = make([]*pos, 8)
		return
	}
	t.grow(len(t.indices) << 1)
}

// grow doubles the index map and rehashes every bucket in cluster order so
// reinsertion never needs Robin Hood fix-up.
func (t *Table) grow(newRawCap int) {
	firstIdeal := 0
	for i, p := range t.indices {
		if p != nil && probeDistance(t.mask, p.hash, uint64(i)) == 0 {
			firstIdeal = i
			break
		}
	}

	old := t.indices
	t.indices = make([]*pos, newRawCap)
	t.mask = uint64(newRawCap - 1)

	for _, p := range old[firstIdeal:] {
		t.reinsertInOrder(p)
	}
	for _, p := range old[:firstIdeal] {
		t.reinsertInOrder(p)
	}
}

func (t *Table) reinsertInOrder(p *pos) {
	if p == nil {
		return
	}
	probe := desiredPos(t.mask, p.hash)
	for {
		if probe >= uint64(len(t.indices)) {
			probe = 0
		}
		if t.indices[probe] == nil {
			t.indices[probe] = p
			return
		}
		probe++
	}
}

func usableCapacity(cap int) int { return cap - cap/4 }

func rawCapacity(n int) int {
	raw := n + n/3
	p := 1
	for p < raw {
		p <<= 1
	}
	if p < 1 {
		p = 1
	}
	return p
}

func desiredPos(mask uint64, h hashValue) uint64 { return uint64(h) & mask }

func probeDistance(mask uint64, h hashValue, current uint64) uint64 {
	return (current - desiredPos(mask, h)) & mask
}

// hashName hashes a header's name with FNV-1a 64, masked to 16 bits. Go's
// stdlib hash/fnv implements FNV-1a bit-for-bit; see DESIGN.md for why that
// is used in place of a third-party hash package.
func hashName(name string) hashValue {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return hashValue(h.Sum64() & (hashSpace - 1))
}
